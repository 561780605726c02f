package domain

import (
	"context"
	"time"
)

// RequestStatus is the approval status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request represents a user's application to participate in an event.
// swagger:model Request
type Request struct {
	ID          string        `json:"id"`
	EventID     string        `json:"event_id"`
	RequesterID string        `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// NewRequest returns a new Request with the given fields. ID is typically set by the repository on create.
func NewRequest(eventID, requesterID string, status RequestStatus, created time.Time) *Request {
	return &Request{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		Created:     created,
	}
}

// ModerationResult is the atomic outcome of one batch moderation call.
type ModerationResult struct {
	ConfirmedRequests []*Request `json:"confirmedRequests"`
	RejectedRequests  []*Request `json:"rejectedRequests"`
}

// RequestRepository defines storage operations for participation requests.
//
// Create and ApplyModeration run inside a single transaction that locks the
// owning event row, so the confirmed-requests counter can never overshoot the
// participant limit under concurrent callers.
type RequestRepository interface {
	// Create inserts the request and, when it is already CONFIRMED, bumps the
	// event's confirmed counter in the same transaction. Returns ErrConflict
	// when the event's participant limit is exhausted.
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// Update persists a status change for a single request (cancellation).
	Update(ctx context.Context, req *Request) error
	ListByEvent(ctx context.Context, eventID string) ([]*Request, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*Request, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Request, error)
	// GetActiveByRequesterAndEvent returns the requester's non-canceled request
	// for the event, or ErrNotFound.
	GetActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*Request, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status RequestStatus) (int, error)
	// ApplyModeration transitions confirmIDs to CONFIRMED and rejectIDs to
	// REJECTED, and adds len(confirmIDs) to the event's confirmed counter, all
	// in one transaction. Returns ErrConflict when confirming would exceed the
	// participant limit.
	ApplyModeration(ctx context.Context, eventID string, confirmIDs, rejectIDs []string) error
}

// RequestService owns the participation-request state machine, including the
// organizer's batch moderation of pending requests.
type RequestService interface {
	Create(ctx context.Context, userID, eventID string) (*Request, error)
	Cancel(ctx context.Context, userID, requestID string) (*Request, error)
	ListByRequester(ctx context.Context, userID string) ([]*Request, error)
	ListByEvent(ctx context.Context, ownerID, eventID string) ([]*Request, error)
	// Moderate batch-approves or batch-rejects pending requests for the owner's
	// event. decision must be RequestConfirmed or RequestRejected.
	Moderate(ctx context.Context, ownerID, eventID string, requestIDs []string, decision RequestStatus) (*ModerationResult, error)
}

package domain

import (
	"context"
	"time"
)

// EventStatus is the publication status of an event.
type EventStatus string

const (
	EventPending   EventStatus = "PENDING"
	EventPublished EventStatus = "PUBLISHED"
	EventCanceled  EventStatus = "CANCELED"
)

// OwnerStateAction is a state transition requested by the event initiator.
type OwnerStateAction string

const (
	SendToReview OwnerStateAction = "SEND_TO_REVIEW"
	CancelReview OwnerStateAction = "CANCEL_REVIEW"
)

// AdminStateAction is a state transition requested by an administrator.
type AdminStateAction string

const (
	PublishEvent AdminStateAction = "PUBLISH_EVENT"
	RejectEvent  AdminStateAction = "REJECT_EVENT"
)

// Location is a geographic point attached to an event.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event represents a published or pending activity with a capacity and a moderation policy.
// ConfirmedRequests caches count(Request where status=CONFIRMED); it is mutated
// only by batch moderation and by request auto-confirmation.
// swagger:model Event
type Event struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	CategoryID        string      `json:"category_id"`
	Location          Location    `json:"location"`
	EventDate         time.Time   `json:"event_date"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participant_limit"`
	RequestModeration bool        `json:"request_moderation"`
	ConfirmedRequests int         `json:"confirmed_requests"`
	InitiatorID       string      `json:"initiator_id"`
	Status            EventStatus `json:"status"`
	CreatedOn         time.Time   `json:"created_on"`
	PublishedOn       *time.Time  `json:"published_on,omitempty"`
	Views             int64       `json:"views"`
}

// Unlimited reports whether the event accepts any number of confirmed requests.
// A zero (or never set) participant limit means unlimited.
func (e *Event) Unlimited() bool {
	return e.ParticipantLimit <= 0
}

// NewEventDraft holds the fields a caller submits to create an event.
type NewEventDraft struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        string
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

// EventPatch holds optional field changes for an event update.
// Nil fields are left untouched.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *string
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// OwnerEventUpdate is an event patch issued by the initiator, optionally
// carrying a review state action.
type OwnerEventUpdate struct {
	EventPatch
	StateAction *OwnerStateAction
}

// AdminEventUpdate is an event patch issued by an administrator, optionally
// carrying a publish/reject state action.
type AdminEventUpdate struct {
	EventPatch
	StateAction *AdminStateAction
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	ListByInitiator(ctx context.Context, initiatorID string, p PaginationParams) ([]*Event, error)
	CountByInitiator(ctx context.Context, initiatorID string) (int, error)
	ExistsByCategory(ctx context.Context, categoryID string) (bool, error)
}

// EventService owns the event publication state machine.
type EventService interface {
	Create(ctx context.Context, initiatorID string, draft NewEventDraft) (*Event, error)
	UpdateByOwner(ctx context.Context, ownerID, eventID string, upd OwnerEventUpdate) (*Event, error)
	UpdateByAdmin(ctx context.Context, eventID string, upd AdminEventUpdate) (*Event, error)
	GetPublished(ctx context.Context, eventID, clientIP string) (*Event, error)
	GetByOwner(ctx context.Context, ownerID, eventID string) (*Event, error)
	// ListByOwner returns one page of the owner's events and the total count
	// across all pages.
	ListByOwner(ctx context.Context, ownerID string, p PaginationParams) ([]*Event, int, error)
}

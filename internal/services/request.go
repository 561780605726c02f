package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
)

type requestService struct {
	requestRepo    domain.RequestRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	notifier       domain.NotificationService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRequestService creates a RequestService with the given repositories and
// the moderation-outcome notifier.
func NewRequestService(
	requestRepo domain.RequestRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *requestService) Create(ctx context.Context, userID, eventID string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if _, err := s.requestRepo.GetActiveByRequesterAndEvent(ctx, userID, eventID); err == nil {
		return nil, fmt.Errorf("request already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get request: %w", err)
	}

	if event.InitiatorID == userID {
		return nil, fmt.Errorf("the initiator cannot request participation in their own event: %w", domain.ErrForbidden)
	}
	if event.Status != domain.EventPublished {
		return nil, fmt.Errorf("cannot request an unpublished event: %w", domain.ErrConflict)
	}
	if !event.Unlimited() && event.ConfirmedRequests >= event.ParticipantLimit {
		return nil, fmt.Errorf("participation limit reached: %w", domain.ErrConflict)
	}

	// Without a limit or without moderation the request is confirmed on the
	// spot; otherwise it waits for the organizer's decision.
	status := domain.RequestPending
	if event.Unlimited() || !event.RequestModeration {
		status = domain.RequestConfirmed
	}

	req := domain.NewRequest(eventID, userID, status, time.Now())
	// The repository re-checks capacity under a row lock on the event, so a
	// creation racing a moderation batch cannot slip past a just-filled limit.
	if err := s.requestRepo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("participation limit reached: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (s *requestService) Cancel(ctx context.Context, userID, requestID string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	if req.Status == domain.RequestCanceled || req.Status == domain.RequestRejected {
		return nil, fmt.Errorf("request %s is already %s: %w", requestID, req.Status, domain.ErrConflict)
	}
	// Anyone but the requester may only withdraw a request that is still
	// awaiting a decision.
	if req.RequesterID != userID && req.Status != domain.RequestPending {
		return nil, fmt.Errorf("only the requester may cancel a decided request: %w", domain.ErrForbidden)
	}

	req.Status = domain.RequestCanceled
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

func (s *requestService) ListByRequester(ctx context.Context, userID string) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.Request{}
	}
	return reqs, nil
}

func (s *requestService) ListByEvent(ctx context.Context, ownerID, eventID string) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != ownerID {
		return nil, fmt.Errorf("caller is not the event initiator: %w", domain.ErrForbidden)
	}
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.Request{}
	}
	return reqs, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// Minimum lead time between "now" and the event date. Owners commit to the
// stricter window; admins may still publish closer to the date.
const (
	ownerMinLeadTime = 2 * time.Hour
	adminMinLeadTime = 1 * time.Hour
)

type eventService struct {
	eventRepo      domain.EventRepository
	requestRepo    domain.RequestRepository
	categoryRepo   domain.CategoryRepository
	userRepo       domain.UserRepository
	views          domain.ViewCounter
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories and the
// read-side view counter.
func NewEventService(
	eventRepo domain.EventRepository,
	requestRepo domain.RequestRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	views domain.ViewCounter,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		requestRepo:    requestRepo,
		categoryRepo:   categoryRepo,
		userRepo:       userRepo,
		views:          views,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, initiatorID string, draft domain.NewEventDraft) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.userRepo.ExistsByID(ctx, initiatorID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", initiatorID, domain.ErrNotFound)
	}

	ok, err = s.categoryRepo.ExistsByID(ctx, draft.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("category %s: %w", draft.CategoryID, domain.ErrNotFound)
	}

	if err := validateLeadTime(draft.EventDate, ownerMinLeadTime); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:             strings.TrimSpace(draft.Title),
		Annotation:        strings.TrimSpace(draft.Annotation),
		Description:       strings.TrimSpace(draft.Description),
		CategoryID:        draft.CategoryID,
		Location:          draft.Location,
		EventDate:         draft.EventDate,
		Paid:              draft.Paid,
		ParticipantLimit:  draft.ParticipantLimit,
		RequestModeration: draft.RequestModeration,
		ConfirmedRequests: 0,
		InitiatorID:       initiatorID,
		Status:            domain.EventPending,
		CreatedOn:         time.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateByOwner(ctx context.Context, ownerID, eventID string, upd domain.OwnerEventUpdate) (*domain.Event, error) {
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
		return nil, fmt.Errorf("only the initiator may edit the event: %w", domain.ErrForbidden)
	}
	if event.Status == domain.EventPublished {
		return nil, fmt.Errorf("published events cannot be edited: %w", domain.ErrConflict)
	}
	if upd.EventDate != nil {
		if err := validateLeadTime(*upd.EventDate, ownerMinLeadTime); err != nil {
			return nil, err
		}
	}

	changed, err := s.applyPatch(ctx, event, upd.EventPatch)
	if err != nil {
		return nil, err
	}
	if upd.StateAction != nil {
		var next domain.EventStatus
		switch *upd.StateAction {
		case domain.SendToReview:
			next = domain.EventPending
		case domain.CancelReview:
			next = domain.EventCanceled
		default:
			return nil, fmt.Errorf("unknown state action %q: %w", *upd.StateAction, domain.ErrValidation)
		}
		if event.Status != next {
			event.Status = next
			changed = true
		}
	}

	// Skip the write entirely when nothing differs from the stored state.
	if !changed {
		return event, nil
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateByAdmin(ctx context.Context, eventID string, upd domain.AdminEventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventPending {
		return nil, fmt.Errorf("only events awaiting moderation can be updated by an admin: %w", domain.ErrConflict)
	}
	if upd.EventDate != nil {
		if err := validateLeadTime(*upd.EventDate, adminMinLeadTime); err != nil {
			return nil, err
		}
	}

	changed, err := s.applyPatch(ctx, event, upd.EventPatch)
	if err != nil {
		return nil, err
	}
	if upd.StateAction != nil {
		switch *upd.StateAction {
		case domain.PublishEvent:
			now := time.Now()
			event.Status = domain.EventPublished
			event.PublishedOn = &now
			changed = true
		case domain.RejectEvent:
			event.Status = domain.EventCanceled
			changed = true
		default:
			return nil, fmt.Errorf("unknown state action %q: %w", *upd.StateAction, domain.ErrValidation)
		}
	}

	if !changed {
		return event, nil
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetPublished(ctx context.Context, eventID, clientIP string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventPublished {
		return nil, fmt.Errorf("event %s is not published: %w", eventID, domain.ErrNotFound)
	}

	// View enrichment is best-effort: the analytics collaborator must never
	// break the read path.
	uri := "/events/" + event.ID
	if err := s.views.RecordHit(ctx, uri, clientIP, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "record hit failed", "event_id", event.ID, "err", err)
	}
	stats, err := s.views.ViewsFor(ctx, []string{event.ID}, event.CreatedOn, time.Now())
	if err != nil {
		s.logger.WarnContext(ctx, "fetch views failed", "event_id", event.ID, "err", err)
	} else {
		event.Views = stats[event.ID]
	}

	// The stored counter is a cache; reads report the live count.
	confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, event.ID, domain.RequestConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	event.ConfirmedRequests = confirmed

	return event, nil
}

func (s *eventService) GetByOwner(ctx context.Context, ownerID, eventID string) (*domain.Event, error) {
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
	return event, nil
}

func (s *eventService) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.userRepo.ExistsByID(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, 0, fmt.Errorf("user %s: %w", ownerID, domain.ErrNotFound)
	}
	events, err := s.eventRepo.ListByInitiator(ctx, ownerID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	total, err := s.eventRepo.CountByInitiator(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

// applyPatch copies non-nil patch fields onto the event and reports whether
// anything actually changed. A category change is checked for existence.
func (s *eventService) applyPatch(ctx context.Context, event *domain.Event, p domain.EventPatch) (bool, error) {
	changed := false

	if p.Title != nil {
		if v := strings.TrimSpace(*p.Title); v != event.Title {
			event.Title = v
			changed = true
		}
	}
	if p.Annotation != nil {
		if v := strings.TrimSpace(*p.Annotation); v != event.Annotation {
			event.Annotation = v
			changed = true
		}
	}
	if p.Description != nil {
		if v := strings.TrimSpace(*p.Description); v != event.Description {
			event.Description = v
			changed = true
		}
	}
	if p.CategoryID != nil && *p.CategoryID != event.CategoryID {
		ok, err := s.categoryRepo.ExistsByID(ctx, *p.CategoryID)
		if err != nil {
			return false, fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return false, fmt.Errorf("category %s: %w", *p.CategoryID, domain.ErrNotFound)
		}
		event.CategoryID = *p.CategoryID
		changed = true
	}
	if p.Location != nil && *p.Location != event.Location {
		event.Location = *p.Location
		changed = true
	}
	if p.EventDate != nil && !p.EventDate.Equal(event.EventDate) {
		event.EventDate = *p.EventDate
		changed = true
	}
	if p.Paid != nil && *p.Paid != event.Paid {
		event.Paid = *p.Paid
		changed = true
	}
	if p.ParticipantLimit != nil && *p.ParticipantLimit != event.ParticipantLimit {
		event.ParticipantLimit = *p.ParticipantLimit
		changed = true
	}
	if p.RequestModeration != nil && *p.RequestModeration != event.RequestModeration {
		event.RequestModeration = *p.RequestModeration
		changed = true
	}

	return changed, nil
}

func validateLeadTime(eventDate time.Time, min time.Duration) error {
	if eventDate.Before(time.Now().Add(min)) {
		return fmt.Errorf("event date must be at least %s in the future: %w", min, domain.ErrValidation)
	}
	return nil
}

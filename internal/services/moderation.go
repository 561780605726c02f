package services

import (
	"context"
	"errors"
	"fmt"

	"eventboard/internal/domain"
)

// Moderate applies one batch decision to the event's pending requests.
//
// All preconditions are checked before anything is written; once writes start,
// the repository applies them in a single transaction, so a batch is never
// left half-decided. When confirming an over-subscribed batch, requests beyond
// the remaining capacity are rejected rather than left pending, in the order
// the caller supplied them.
func (s *requestService) Moderate(ctx context.Context, ownerID, eventID string, requestIDs []string, decision domain.RequestStatus) (*domain.ModerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if decision != domain.RequestConfirmed && decision != domain.RequestRejected {
		return nil, fmt.Errorf("decision must be %s or %s: %w", domain.RequestConfirmed, domain.RequestRejected, domain.ErrValidation)
	}

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

	loaded, err := s.requestRepo.ListByIDs(ctx, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	byID := make(map[string]*domain.Request, len(loaded))
	for _, req := range loaded {
		if req.EventID != eventID {
			return nil, fmt.Errorf("requests do not belong to this event: %w", domain.ErrConflict)
		}
		byID[req.ID] = req
	}
	// Preserve the caller's ordering: the batch is decided positionally, not
	// by creation time. An id that loaded nothing does not belong either. A
	// repeated id would land on both sides of the capacity split and desync
	// the confirmed counter, so the batch must be duplicate-free.
	requests := make([]*domain.Request, 0, len(requestIDs))
	seen := make(map[string]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate request id %s in batch: %w", id, domain.ErrValidation)
		}
		seen[id] = struct{}{}
		req, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("requests do not belong to this event: %w", domain.ErrConflict)
		}
		requests = append(requests, req)
	}

	result := &domain.ModerationResult{
		ConfirmedRequests: []*domain.Request{},
		RejectedRequests:  []*domain.Request{},
	}

	if decision == domain.RequestRejected {
		for _, req := range requests {
			if req.Status == domain.RequestConfirmed {
				return nil, fmt.Errorf("cannot reject an already confirmed request: %w", domain.ErrConflict)
			}
		}
		rejectIDs := make([]string, 0, len(requests))
		for _, req := range requests {
			if req.Status != domain.RequestPending {
				return nil, fmt.Errorf("can only change status of pending requests: %w", domain.ErrConflict)
			}
			rejectIDs = append(rejectIDs, req.ID)
		}
		if err := s.requestRepo.ApplyModeration(ctx, eventID, nil, rejectIDs); err != nil {
			return nil, fmt.Errorf("apply moderation: %w", err)
		}
		for _, req := range requests {
			req.Status = domain.RequestRejected
		}
		result.RejectedRequests = requests
		s.notifyDecisions(ctx, event, result)
		return result, nil
	}

	if event.RequestModeration && !event.Unlimited() && event.ConfirmedRequests >= event.ParticipantLimit {
		return nil, fmt.Errorf("participation limit exhausted: %w", domain.ErrConflict)
	}
	for _, req := range requests {
		if req.Status != domain.RequestPending {
			return nil, fmt.Errorf("can only change status of pending requests: %w", domain.ErrConflict)
		}
	}

	availableSlots := len(requests)
	if !event.Unlimited() {
		availableSlots = event.ParticipantLimit - event.ConfirmedRequests
	}

	var confirmIDs, rejectIDs []string
	for i, req := range requests {
		if i < availableSlots {
			confirmIDs = append(confirmIDs, req.ID)
		} else {
			rejectIDs = append(rejectIDs, req.ID)
		}
	}
	if err := s.requestRepo.ApplyModeration(ctx, eventID, confirmIDs, rejectIDs); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("participation limit exhausted: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("apply moderation: %w", err)
	}
	for i, req := range requests {
		if i < availableSlots {
			req.Status = domain.RequestConfirmed
			result.ConfirmedRequests = append(result.ConfirmedRequests, req)
		} else {
			req.Status = domain.RequestRejected
			result.RejectedRequests = append(result.RejectedRequests, req)
		}
	}
	event.ConfirmedRequests += len(result.ConfirmedRequests)

	s.notifyDecisions(ctx, event, result)
	return result, nil
}

// notifyDecisions emails each requester their outcome. Failures are logged
// and never fail the moderation call.
func (s *requestService) notifyDecisions(ctx context.Context, event *domain.Event, result *domain.ModerationResult) {
	if s.notifier == nil {
		return
	}
	decided := make([]*domain.Request, 0, len(result.ConfirmedRequests)+len(result.RejectedRequests))
	decided = append(decided, result.ConfirmedRequests...)
	decided = append(decided, result.RejectedRequests...)

	for _, req := range decided {
		user, err := s.userRepo.GetByID(ctx, req.RequesterID)
		if err != nil {
			s.logger.WarnContext(ctx, "lookup requester for notification failed", "request_id", req.ID, "err", err)
			continue
		}
		data := &domain.RequestDecisionEmailData{
			Email:      user.Email,
			EventTitle: event.Title,
			Status:     req.Status,
		}
		if err := s.notifier.SendRequestDecision(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "send decision notification failed", "request_id", req.ID, "err", err)
		}
	}
}

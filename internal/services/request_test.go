package services

import (
	"context"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	svc      domain.RequestService
	events   *fakeEventRepo
	requests *fakeRequestRepo
	notifier *fakeNotifier
	users    *fakeUserRepo
}

func newRequestFixture(userIDs ...string) *requestFixture {
	events := newFakeEventRepo()
	requests := newFakeRequestRepo(events)
	users := newFakeUserRepo(userIDs...)
	notifier := &fakeNotifier{}
	svc := NewRequestService(requests, events, users, notifier, testLogger(), 5*time.Second)
	return &requestFixture{svc: svc, events: events, requests: requests, notifier: notifier, users: users}
}

// seedPublishedEvent stores a PUBLISHED event owned by u-owner.
func (f *requestFixture) seedPublishedEvent(limit int, moderation bool) *domain.Event {
	now := time.Now()
	event := &domain.Event{
		ID:                "ev-1",
		Title:             "Workshop",
		CategoryID:        "cat-1",
		EventDate:         now.Add(48 * time.Hour),
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		InitiatorID:       "u-owner",
		Status:            domain.EventPublished,
		CreatedOn:         now.Add(-time.Hour),
		PublishedOn:       &now,
	}
	f.events.byID[event.ID] = event
	return event
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("pending when moderation required", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		req, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestPending, req.Status)
		assert.Equal(t, "ev-1", req.EventID)
		assert.Equal(t, "u-1", req.RequesterID)
		assert.Equal(t, 0, f.events.byID["ev-1"].ConfirmedRequests)
	})

	t.Run("auto-confirmed without moderation", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, false)
		req, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestConfirmed, req.Status)
		assert.Equal(t, 1, f.events.byID["ev-1"].ConfirmedRequests)
	})

	t.Run("auto-confirmed on unlimited event", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(0, true)
		req, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestConfirmed, req.Status)
	})

	t.Run("unpublished event", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		event := f.seedPublishedEvent(10, true)
		event.Status = domain.EventPending
		_, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, f.requests.byID)
	})

	t.Run("initiator requesting own event", func(t *testing.T) {
		f := newRequestFixture("u-owner")
		f.seedPublishedEvent(10, true)
		_, err := f.svc.Create(ctx, "u-owner", "ev-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newRequestFixture("u-owner")
		f.seedPublishedEvent(10, true)
		_, err := f.svc.Create(ctx, "u-ghost", "ev-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newRequestFixture("u-1")
		_, err := f.svc.Create(ctx, "u-1", "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate request", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		first, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, "u-1", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)

		stored, err := f.requests.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestPending, stored.Status)
	})

	t.Run("canceled request does not block a new one", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		f.requests.add(&domain.Request{EventID: "ev-1", RequesterID: "u-1", Status: domain.RequestCanceled})

		_, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.NoError(t, err)
	})

	t.Run("capacity exhausted", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		event := f.seedPublishedEvent(2, false)
		event.ConfirmedRequests = 2
		_, err := f.svc.Create(ctx, "u-1", "ev-1")
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, f.requests.byID)
	})
}

func TestRequestService_Cancel(t *testing.T) {
	ctx := context.Background()

	seed := func(f *requestFixture, status domain.RequestStatus) *domain.Request {
		return f.requests.add(&domain.Request{
			ID:          "req-1",
			EventID:     "ev-1",
			RequesterID: "u-1",
			Status:      status,
			Created:     time.Now(),
		})
	}

	t.Run("requester cancels a pending request", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		seed(f, domain.RequestPending)
		req, err := f.svc.Cancel(ctx, "u-1", "req-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestCanceled, req.Status)
		assert.Equal(t, domain.RequestCanceled, f.requests.byID["req-1"].Status)
	})

	t.Run("requester cancels a confirmed request", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		seed(f, domain.RequestConfirmed)
		req, err := f.svc.Cancel(ctx, "u-1", "req-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestCanceled, req.Status)
	})

	t.Run("already rejected", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		seed(f, domain.RequestRejected)
		_, err := f.svc.Cancel(ctx, "u-1", "req-1")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("already canceled", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		seed(f, domain.RequestCanceled)
		_, err := f.svc.Cancel(ctx, "u-1", "req-1")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("someone else may only withdraw pending requests", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		seed(f, domain.RequestConfirmed)
		_, err := f.svc.Cancel(ctx, "u-owner", "req-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, domain.RequestConfirmed, f.requests.byID["req-1"].Status)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newRequestFixture("u-1")
		_, err := f.svc.Cancel(ctx, "u-1", "req-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRequestService_Lists(t *testing.T) {
	ctx := context.Background()

	t.Run("list by requester", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		f.requests.add(&domain.Request{EventID: "ev-1", RequesterID: "u-1", Status: domain.RequestPending})
		f.requests.add(&domain.Request{EventID: "ev-1", RequesterID: "u-2", Status: domain.RequestPending})

		reqs, err := f.svc.ListByRequester(ctx, "u-1")
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, "u-1", reqs[0].RequesterID)
	})

	t.Run("list by requester with no requests", func(t *testing.T) {
		f := newRequestFixture("u-1")
		reqs, err := f.svc.ListByRequester(ctx, "u-1")
		require.NoError(t, err)
		assert.NotNil(t, reqs)
		assert.Empty(t, reqs)
	})

	t.Run("list for event requires the initiator", func(t *testing.T) {
		f := newRequestFixture("u-owner", "u-1")
		f.seedPublishedEvent(10, true)
		_, err := f.svc.ListByEvent(ctx, "u-1", "ev-1")
		require.ErrorIs(t, err, domain.ErrForbidden)

		reqs, err := f.svc.ListByEvent(ctx, "u-owner", "ev-1")
		require.NoError(t, err)
		assert.Empty(t, reqs)
	})
}

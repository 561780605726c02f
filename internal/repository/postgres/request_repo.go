package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

// Create inserts the request inside a transaction that holds a row lock on the
// owning event. Two concurrent creations (or a creation racing a moderation
// batch) serialize on the lock, so the capacity check cannot act on a stale
// confirmed count. An auto-confirmed request bumps the cached counter in the
// same transaction.
func (r *requestRepository) Create(ctx context.Context, req *domain.Request) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var participantLimit, confirmedRequests int
	err = tx.QueryRowContext(ctx, `
		SELECT participant_limit, confirmed_requests
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, req.EventID).Scan(&participantLimit, &confirmedRequests)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if participantLimit > 0 && confirmedRequests >= participantLimit {
		return domain.ErrConflict
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO requests (id, event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4, $5)
	`, req.ID, req.EventID, req.RequesterID, req.Status, req.Created)
	if err != nil {
		return err
	}

	if req.Status == domain.RequestConfirmed {
		_, err = tx.ExecContext(ctx, `
			UPDATE events SET confirmed_requests = confirmed_requests + 1 WHERE id = $1
		`, req.EventID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE id = $1
	`
	req := &domain.Request{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Update(ctx context.Context, req *domain.Request) error {
	query := `UPDATE requests SET status = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, req.ID, req.Status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Request, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE event_id = $1
		ORDER BY created ASC
	`
	return r.queryRequests(ctx, query, eventID)
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE requester_id = $1
		ORDER BY created DESC
	`
	return r.queryRequests(ctx, query, requesterID)
}

func (r *requestRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Request, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE id = ANY($1)
	`
	return r.queryRequests(ctx, query, pq.Array(ids))
}

func (r *requestRepository) GetActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*domain.Request, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE requester_id = $1 AND event_id = $2 AND status <> $3
	`
	req := &domain.Request{}
	err := r.DB.QueryRowContext(ctx, query, requesterID, eventID, domain.RequestCanceled).
		Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int, error) {
	query := `SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyModeration writes one batch decision atomically: the event row is
// locked, the capacity invariant is re-checked against the locked counter,
// both status updates run, and the counter is advanced, all before commit.
// A failed transaction leaves every request and the counter untouched.
func (r *requestRepository) ApplyModeration(ctx context.Context, eventID string, confirmIDs, rejectIDs []string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var participantLimit, confirmedRequests int
	err = tx.QueryRowContext(ctx, `
		SELECT participant_limit, confirmed_requests
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&participantLimit, &confirmedRequests)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if participantLimit > 0 && confirmedRequests+len(confirmIDs) > participantLimit {
		return domain.ErrConflict
	}

	if len(confirmIDs) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE requests SET status = $1 WHERE id = ANY($2)
		`, domain.RequestConfirmed, pq.Array(confirmIDs))
		if err != nil {
			return err
		}
	}
	if len(rejectIDs) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE requests SET status = $1 WHERE id = ANY($2)
		`, domain.RequestRejected, pq.Array(rejectIDs))
		if err != nil {
			return err
		}
	}
	if len(confirmIDs) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE events SET confirmed_requests = confirmed_requests + $2 WHERE id = $1
		`, eventID, len(confirmIDs))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *requestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]*domain.Request, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.Request
	for rows.Next() {
		req := &domain.Request{}
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []*domain.Request{}
	}
	return reqs, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"eventboard/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, annotation, description, category_id, lat, lon,
		event_date, paid, participant_limit, request_moderation,
		confirmed_requests, initiator_id, status, created_on, published_on`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO events (id, title, annotation, description, category_id, lat, lon,
			event_date, paid, participant_limit, request_moderation,
			confirmed_requests, initiator_id, status, created_on, published_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.DB.ExecContext(ctx, query,
		event.ID, event.Title, event.Annotation, event.Description, event.CategoryID,
		event.Location.Lat, event.Location.Lon, event.EventDate, event.Paid,
		event.ParticipantLimit, event.RequestModeration, event.ConfirmedRequests,
		event.InitiatorID, event.Status, event.CreatedOn, event.PublishedOn,
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	event := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Title, &event.Annotation, &event.Description, &event.CategoryID,
		&event.Location.Lat, &event.Location.Lon, &event.EventDate, &event.Paid,
		&event.ParticipantLimit, &event.RequestModeration, &event.ConfirmedRequests,
		&event.InitiatorID, &event.Status, &event.CreatedOn, &event.PublishedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, annotation = $3, description = $4, category_id = $5,
			lat = $6, lon = $7, event_date = $8, paid = $9,
			participant_limit = $10, request_moderation = $11,
			status = $12, published_on = $13
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		event.ID, event.Title, event.Annotation, event.Description, event.CategoryID,
		event.Location.Lat, event.Location.Lon, event.EventDate, event.Paid,
		event.ParticipantLimit, event.RequestModeration, event.Status, event.PublishedOn,
	)
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

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID string, p domain.PaginationParams) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE initiator_id = $1
		ORDER BY created_on DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, initiatorID, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		if err := rows.Scan(
			&event.ID, &event.Title, &event.Annotation, &event.Description, &event.CategoryID,
			&event.Location.Lat, &event.Location.Lon, &event.EventDate, &event.Paid,
			&event.ParticipantLimit, &event.RequestModeration, &event.ConfirmedRequests,
			&event.InitiatorID, &event.Status, &event.CreatedOn, &event.PublishedOn,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (r *eventRepository) CountByInitiator(ctx context.Context, initiatorID string) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE initiator_id = $1`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, initiatorID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *eventRepository) ExistsByCategory(ctx context.Context, categoryID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{
	"id", "title", "annotation", "description", "category_id", "lat", "lon",
	"event_date", "paid", "participant_limit", "request_moderation",
	"confirmed_requests", "initiator_id", "status", "created_on", "published_on",
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdOn := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				ID:                "ev-1",
				Title:             "Conf 2026",
				Annotation:        "Two days of talks",
				Description:       "Full program",
				CategoryID:        "cat-1",
				Location:          domain.Location{Lat: 59.93, Lon: 30.31},
				EventDate:         eventDate,
				ParticipantLimit:  100,
				RequestModeration: true,
				InitiatorID:       "user-1",
				Status:            domain.EventPending,
				CreatedOn:         createdOn,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events`).
					WithArgs("ev-1", "Conf 2026", "Two days of talks", "Full program", "cat-1",
						59.93, 30.31, eventDate, false, 100, true, 0, "user-1",
						domain.EventPending, createdOn, nil).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			event: &domain.Event{
				ID:     "ev-2",
				Title:  "Conf",
				Status: domain.EventPending,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Create_AssignsID(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventRepository(db)
	event := &domain.Event{Title: "Conf", Status: domain.EventPending}
	require.NoError(t, repo.Create(ctx, event))
	require.NotEmpty(t, event.ID)
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	createdOn := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	publishedOn := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(eventRowColumns).AddRow(
			"ev-1", "Conf 2026", "Two days of talks", "Full program", "cat-1",
			59.93, 30.31, eventDate, true, 50, true, 12, "user-1",
			string(domain.EventPublished), createdOn, publishedOn,
		)
		mock.ExpectQuery(`FROM events\s+WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(rows)

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "Conf 2026", event.Title)
		require.Equal(t, domain.EventPublished, event.Status)
		require.Equal(t, 12, event.ConfirmedRequests)
		require.Equal(t, domain.Location{Lat: 59.93, Lon: 30.31}, event.Location)
		require.NotNil(t, event.PublishedOn)
		require.True(t, event.PublishedOn.Equal(publishedOn))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	event := &domain.Event{
		ID:               "ev-1",
		Title:            "Renamed",
		CategoryID:       "cat-1",
		EventDate:        time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC),
		ParticipantLimit: 30,
		Status:           domain.EventPending,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events\s+SET title = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Update(ctx, event))
	})

	t.Run("no such row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		err = repo.Update(ctx, event)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_ListByInitiator(t *testing.T) {
	ctx := context.Background()
	createdOn := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("ev-1", "First", "", "", "cat-1", 0.0, 0.0, eventDate, false, 0, true, 0,
			"user-1", string(domain.EventPending), createdOn, nil).
		AddRow("ev-2", "Second", "", "", "cat-1", 0.0, 0.0, eventDate, false, 0, true, 0,
			"user-1", string(domain.EventCanceled), createdOn, nil)
	mock.ExpectQuery(`WHERE initiator_id = \$1\s+ORDER BY created_on DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("user-1", 10, 10).
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	events, err := repo.ListByInitiator(ctx, "user-1", domain.PaginationParams{Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "ev-1", events[0].ID)
}

func TestEventRepository_CountByInitiator(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE initiator_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))

	repo := NewEventRepository(db)
	count, err := repo.CountByInitiator(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 45, count)
}

func TestEventRepository_ExistsByCategory(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewEventRepository(db)
	exists, err := repo.ExistsByCategory(ctx, "cat-1")
	require.NoError(t, err)
	require.True(t, exists)
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"frameit/internal/domain"
)

var eventCols = []string{
	"id", "name", "description", "location", "start_time", "welcome_message",
	"access_code", "qr_code_key", "cover_image_key", "creator_id", "created_at", "updated_at",
}

func testEvent(now time.Time) *domain.Event {
	return &domain.Event{
		ID:         "ev-1",
		Name:       "Launch Party",
		Location:   "Berlin",
		StartTime:  now,
		AccessCode: "4821",
		QRCodeKey:  "events/ev-1/qr-code.png",
		Tags:       []string{"party", "launch"},
		CreatorID:  "creator",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name:  "event with tags",
			event: testEvent(now),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO events`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO event_tags`).
					WithArgs("ev-1", "party").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO event_tags`).
					WithArgs("ev-1", "launch").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "event without tags",
			event: &domain.Event{
				ID: "ev-2", Name: "Plain", Location: "Paris",
				StartTime: now, AccessCode: "1000", QRCodeKey: "events/ev-2/qr-code.png",
				CreatorID: "creator", CreatedAt: now, UpdatedAt: now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO events`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:  "insert failure rolls back",
			event: testEvent(now),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
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
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found with tags", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-1", "Launch Party", nil, "Berlin", now, "Welcome!",
				"4821", "events/ev-1/qr-code.png", nil, "creator", now, now,
			))
		mock.ExpectQuery(`SELECT tag FROM event_tags`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"tag"}).AddRow("launch").AddRow("party"))

		event, err := NewEventRepository(db).GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "Launch Party", event.Name)
		require.Equal(t, "4821", event.AccessCode)
		require.Equal(t, "Welcome!", event.WelcomeMessage)
		require.Empty(t, event.CoverImageKey)
		require.Equal(t, []string{"launch", "party"}, event.Tags)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		_, err = NewEventRepository(db).GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("partial update", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), name = \$1, location = \$2`).
			WithArgs("New Name", "Hamburg", "ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-1", "New Name", nil, "Hamburg", now, nil,
				"4821", "events/ev-1/qr-code.png", nil, "creator", now, now,
			))
		mock.ExpectQuery(`SELECT tag FROM event_tags`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"tag"}))

		name, location := "New Name", "Hamburg"
		event, err := NewEventRepository(db).Update(ctx, "ev-1", domain.EventUpdate{
			Name:     &name,
			Location: &location,
		})
		require.NoError(t, err)
		require.Equal(t, "New Name", event.Name)
		require.Equal(t, "Hamburg", event.Location)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tag replacement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\)`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-1", "Launch Party", nil, "Berlin", now, nil,
				"4821", "events/ev-1/qr-code.png", nil, "creator", now, now,
			))
		mock.ExpectExec(`DELETE FROM event_tags`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO event_tags`).
			WithArgs("ev-1", "afterparty").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT tag FROM event_tags`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"tag"}).AddRow("afterparty"))

		event, err := NewEventRepository(db).Update(ctx, "ev-1", domain.EventUpdate{
			Tags: []string{"afterparty"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{"afterparty"}, event.Tags)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnError(sql.ErrNoRows)

		name := "x"
		_, err = NewEventRepository(db).Update(ctx, "ev-missing", domain.EventUpdate{Name: &name})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewEventRepository(db).Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event is ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events`).
			WithArgs("ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, NewEventRepository(db).Delete(ctx, "ev-missing"), domain.ErrNotFound)
	})
}

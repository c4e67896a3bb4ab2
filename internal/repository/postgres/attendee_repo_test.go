package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"frameit/internal/domain"
)

func TestAttendeeRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rejoined := joined.Add(48 * time.Hour)

	attendee := func() *domain.Attendee {
		return &domain.Attendee{
			ID:           "att-new",
			EventID:      "ev-1",
			Name:         "Alice",
			Email:        "alice@example.com",
			Relationship: domain.RelationshipFriend,
			JoinedAt:     rejoined,
			LastJoinedAt: rejoined,
		}
	}
	upsertCols := []string{"id", "user_id", "joined_at", "last_joined_at", "inserted"}

	t.Run("fresh insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO attendees`).
			WillReturnRows(sqlmock.NewRows(upsertCols).
				AddRow("att-new", nil, rejoined, rejoined, true))

		a := attendee()
		created, err := NewAttendeeRepository(db).Upsert(ctx, a)
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, "att-new", a.ID)
		require.Nil(t, a.UserID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict updates in place", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		// The existing row keeps its id and joined_at; last_joined_at moves.
		mock.ExpectQuery(`INSERT INTO attendees`).
			WillReturnRows(sqlmock.NewRows(upsertCols).
				AddRow("att-original", "u1", joined, rejoined, false))

		a := attendee()
		created, err := NewAttendeeRepository(db).Upsert(ctx, a)
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, "att-original", a.ID)
		require.Equal(t, joined, a.JoinedAt)
		require.Equal(t, rejoined, a.LastJoinedAt)
		require.NotNil(t, a.UserID)
		require.Equal(t, "u1", *a.UserID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure maps to ErrConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO attendees`).
			WillReturnError(&pq.Error{Code: "40001"})

		_, err = NewAttendeeRepository(db).Upsert(ctx, attendee())
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("deadlock maps to ErrConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO attendees`).
			WillReturnError(&pq.Error{Code: "40P01"})

		_, err = NewAttendeeRepository(db).Upsert(ctx, attendee())
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO attendees`).
			WillReturnError(sql.ErrConnDone)

		_, err = NewAttendeeRepository(db).Upsert(ctx, attendee())
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrConflict)
	})
}

func TestAttendeeRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM attendees`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT (.+) FROM attendees`).
		WithArgs("ev-1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_id", "name", "email", "relationship", "user_id", "joined_at", "last_joined_at",
		}).
			AddRow("att-1", "ev-1", "Alice", "alice@example.com", "friend", "u1", now, now).
			AddRow("att-2", "ev-1", "Guest", "guest@example.com", "other", nil, now, now))

	attendees, total, err := NewAttendeeRepository(db).ListByEventID(ctx, "ev-1",
		domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 25, total)
	require.Len(t, attendees, 2)
	require.NotNil(t, attendees[0].UserID)
	require.Nil(t, attendees[1].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_ExistsByIdentifier(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		exists     bool
	}{
		{name: "matches email", identifier: "alice@example.com", exists: true},
		{name: "matches user id", identifier: "u1", exists: true},
		{name: "no match", identifier: "nobody", exists: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs("ev-1", tt.identifier).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			got, err := NewAttendeeRepository(db).ExistsByIdentifier(ctx, "ev-1", tt.identifier)
			require.NoError(t, err)
			require.Equal(t, tt.exists, got)
		})
	}
}

func TestAttendeeRepository_ListUserIDsByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT user_id`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1").AddRow("u2"))

	ids, err := NewAttendeeRepository(db).ListUserIDsByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

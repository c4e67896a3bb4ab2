package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"frameit/internal/domain"
)

func TestEventInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO event_invitations`).
		WithArgs("ev-1", "bob@example.com", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))

	inv := &domain.EventInvitation{EventID: "ev-1", Email: "bob@example.com", SentAt: now}
	require.NoError(t, NewEventInvitationRepository(db).Create(ctx, inv))
	require.Equal(t, "inv-1", inv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventInvitationRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("unsearched list", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_invitations`).
			WithArgs("ev-1", "%%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(`SELECT id, event_id, email, sent_at`).
			WithArgs("ev-1", "%%", 20, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "email", "sent_at"}).
				AddRow("inv-2", "ev-1", "carol@example.com", now).
				AddRow("inv-1", "ev-1", "bob@example.com", now.Add(-time.Hour)))

		invs, total, err := NewEventInvitationRepository(db).ListByEventID(ctx, "ev-1", "",
			domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, invs, 2)
		require.Equal(t, "carol@example.com", invs[0].Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search filters by substring", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_invitations`).
			WithArgs("ev-1", "%bob%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT id, event_id, email, sent_at`).
			WithArgs("ev-1", "%bob%", 20, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "email", "sent_at"}).
				AddRow("inv-1", "ev-1", "bob@example.com", now))

		invs, total, err := NewEventInvitationRepository(db).ListByEventID(ctx, "ev-1", "bob",
			domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Len(t, invs, 1)
	})
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"frameit/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

// Upsert inserts or updates in one atomic statement keyed on
// (event_id, email). On conflict the existing row keeps its id and joined_at;
// name, relationship, user_id, and last_joined_at are refreshed. The
// "xmax = 0" expression is true only for freshly inserted rows, which is how
// created is derived without a second round trip.
func (r *attendeeRepository) Upsert(ctx context.Context, a *domain.Attendee) (bool, error) {
	query := `
		INSERT INTO attendees (id, event_id, name, email, relationship, user_id, joined_at, last_joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id, email) DO UPDATE SET
			name = EXCLUDED.name,
			relationship = EXCLUDED.relationship,
			user_id = COALESCE(EXCLUDED.user_id, attendees.user_id),
			last_joined_at = EXCLUDED.last_joined_at
		RETURNING id, user_id, joined_at, last_joined_at, (xmax = 0) AS inserted
	`
	var userID sql.NullString
	var created bool
	err := r.DB.QueryRowContext(ctx, query,
		a.ID, a.EventID, a.Name, a.Email, a.Relationship, a.UserID, a.JoinedAt, a.LastJoinedAt,
	).Scan(&a.ID, &userID, &a.JoinedAt, &a.LastJoinedAt, &created)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && isRetryable(pqErr) {
			return false, domain.ErrConflict
		}
		return false, err
	}
	if userID.Valid {
		a.UserID = &userID.String
	} else {
		a.UserID = nil
	}
	return created, nil
}

// isRetryable reports whether the error is a serialization or deadlock
// failure, which the membership ledger retries.
func isRetryable(err *pq.Error) bool {
	return err.Code == "40001" || err.Code == "40P01"
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, name, email, relationship, user_id, joined_at, last_joined_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY joined_at, email
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a := &domain.Attendee{}
		var userID sql.NullString
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.Relationship, &userID, &a.JoinedAt, &a.LastJoinedAt); err != nil {
			return nil, 0, err
		}
		if userID.Valid {
			a.UserID = &userID.String
		}
		attendees = append(attendees, a)
	}
	return attendees, total, rows.Err()
}

func (r *attendeeRepository) ExistsByIdentifier(ctx context.Context, eventID, identifier string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendees
			WHERE event_id = $1 AND (user_id = $2 OR email = $2)
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, identifier).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *attendeeRepository) ListUserIDsByEventID(ctx context.Context, eventID string) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM attendees
		WHERE event_id = $1 AND user_id IS NOT NULL
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

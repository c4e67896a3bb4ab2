package postgres

import (
	"context"
	"database/sql"

	"frameit/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{
		DB: db,
	}
}

// Add inserts the reference keyed on (user_id, event_id). Re-adding an
// existing pair is a no-op, so at most one entry per event exists per user.
func (r *membershipRepository) Add(ctx context.Context, ref *domain.MembershipRef) error {
	query := `
		INSERT INTO user_events (user_id, event_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, ref.UserID, ref.EventID, ref.Role, ref.JoinedAt)
	return err
}

// Remove deletes by key. Removing an absent pair succeeds, so deletion
// cleanup can be retried safely.
func (r *membershipRepository) Remove(ctx context.Context, userID, eventID string) error {
	query := `DELETE FROM user_events WHERE user_id = $1 AND event_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

func (r *membershipRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.MembershipRef, error) {
	query := `
		SELECT user_id, event_id, role, joined_at
		FROM user_events
		WHERE user_id = $1
		ORDER BY joined_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]*domain.MembershipRef, 0)
	for rows.Next() {
		ref := &domain.MembershipRef{}
		if err := rows.Scan(&ref.UserID, &ref.EventID, &ref.Role, &ref.JoinedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

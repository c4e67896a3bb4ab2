package domain

import (
	"context"
	"time"
)

// User mirrors the identity-provider triple plus bookkeeping timestamps.
// Rows are upserted the first time an identity is seen.
// swagger:model User
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is the verified identity-provider triple attached to a request.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
}

// MembershipRole is a user's role in an event they are indexed under.
type MembershipRole string

const (
	RoleCreator  MembershipRole = "creator"
	RoleAttendee MembershipRole = "attendee"
)

// MembershipRef is one entry of a user's reverse event index ("my events").
// At most one entry exists per (user, event).
// swagger:model MembershipRef
type MembershipRef struct {
	UserID   string         `json:"-"`
	EventID  string         `json:"event_id"`
	Role     MembershipRole `json:"role"`
	JoinedAt time.Time      `json:"joined_at"`
}

// MembershipWithEvent bundles a membership reference with its event.
// swagger:model MembershipWithEvent
type MembershipWithEvent struct {
	Membership *MembershipRef `json:"membership"`
	Event      *Event         `json:"event"`
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	// Upsert creates the user or refreshes display name and email.
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
}

// MembershipRepository maintains the per-user reverse event index. Add and
// Remove are keyed operations, never whole-list rewrites, so concurrent
// updates to one user's index cannot lose entries.
type MembershipRepository interface {
	// Add inserts the reference; adding an existing (user, event) pair is a no-op.
	Add(ctx context.Context, ref *MembershipRef) error
	// Remove deletes the reference by key. Removing an absent pair is a no-op.
	Remove(ctx context.Context, userID, eventID string) error
	ListByUserID(ctx context.Context, userID string) ([]*MembershipRef, error)
}

// TokenVerifier verifies an identity-provider token and returns the identity
// it asserts.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// UserService keeps local user records in sync with the identity provider.
type UserService interface {
	// EnsureUser upserts the identity triple and returns the stored user.
	EnsureUser(ctx context.Context, identity Identity) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

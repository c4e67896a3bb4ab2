package domain

import (
	"context"
	"time"
)

// GrantTTL is how long a verified access grant stays valid. Expiry is
// evaluated lazily on check; there is no active eviction.
const GrantTTL = 24 * time.Hour

// AccessGrant records that a code challenge was passed for an event. It is a
// capability cache only, carries no integrity protection, and is never the
// authoritative answer; that is always VerifyAccessCode against the stored code.
type AccessGrant struct {
	EventID    string    `json:"event_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// AccessService verifies claimed event/code pairs and resolves events for the
// two-step access flow.
type AccessService interface {
	// ResolveEvent loads the event a visitor claims (typed in or scanned
	// from a QR code). Unknown IDs fail with ErrNotFound.
	ResolveEvent(ctx context.Context, eventID string) (*Event, error)
	// VerifyAccessCode compares the submitted code against the event's
	// stored code. The submitted code is trimmed; comparison is otherwise
	// exact. Unknown events fail with ErrNotFound rather than returning false.
	VerifyAccessCode(ctx context.Context, eventID, submittedCode string) (bool, error)
}

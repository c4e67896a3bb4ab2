package domain

import (
	"context"
	"time"
)

// Relationship values accepted on join. Free text in storage; these are the
// ones the join form offers.
const (
	RelationshipFriend    = "friend"
	RelationshipFamily    = "family"
	RelationshipColleague = "colleague"
	RelationshipOther     = "other"
)

// Attendee is a person (authenticated or guest) who has joined an event.
// At most one attendee exists per email within an event.
// swagger:model Attendee
type Attendee struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Relationship string    `json:"relationship"`
	UserID       *string   `json:"user_id,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
	LastJoinedAt time.Time `json:"last_joined_at"`
}

// JoinRequest carries the attendee data submitted with a join. UserID is nil
// for guest attendees.
type JoinRequest struct {
	Name         string
	Email        string
	Relationship string
	UserID       *string
}

// Validate returns human-readable messages for missing required fields.
func (r *JoinRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if r.Relationship == "" {
		errs = append(errs, "relationship is required")
	}
	return errs
}

// AttendeeRepository defines storage operations for event attendees.
type AttendeeRepository interface {
	// Upsert inserts the attendee or, when one already exists for
	// (event_id, email), updates name, relationship, user_id, and
	// last_joined_at in place while preserving joined_at. The write is a
	// single atomic statement; concurrent joins by different attendees never
	// clobber each other. Returns created=false when an existing row was
	// updated. A serialization race surfaces as ErrConflict.
	Upsert(ctx context.Context, attendee *Attendee) (created bool, err error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Attendee, int, error)
	// ExistsByIdentifier reports whether any attendee of the event has the
	// given user ID or email.
	ExistsByIdentifier(ctx context.Context, eventID, identifier string) (bool, error)
	// ListUserIDsByEventID returns the distinct user IDs of authenticated
	// attendees. Guests carry no user ID and are excluded.
	ListUserIDsByEventID(ctx context.Context, eventID string) ([]string, error)
}

// MembershipService is the membership ledger: it maintains the set of
// attendees per event and answers membership probes.
type MembershipService interface {
	// Join upserts the attendee keyed on exact-case email. Returns
	// created=true for a first join, false for a repeat join (which updates
	// name, relationship, and last_joined_at but keeps joined_at).
	Join(ctx context.Context, eventID string, req JoinRequest) (*Attendee, bool, error)
	// IsMember reports whether the identifier matches any attendee's user ID
	// or email. An unknown event yields false, not an error.
	IsMember(ctx context.Context, eventID, identifier string) (bool, error)
	// ListAttendees returns the event's attendees for its creator.
	ListAttendees(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*Attendee, int, error)
}

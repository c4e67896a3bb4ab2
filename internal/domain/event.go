package domain

import (
	"context"
	"time"
)

// Event represents a created gathering with an owner, schedule, and access credentials.
// swagger:model Event
type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Location       string    `json:"location"`
	StartTime      time.Time `json:"start_time"`
	WelcomeMessage string    `json:"welcome_message,omitempty"`
	AccessCode     string    `json:"-"`
	QRCodeKey      string    `json:"-"`
	CoverImageKey  string    `json:"-"`
	Tags           []string  `json:"tags,omitempty"`
	CreatorID      string    `json:"creator_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEvent returns an Event with the given identity and core fields.
// Credentials and timestamps are filled in by the lifecycle coordinator.
func NewEvent(id, name, description, location string, startTime time.Time, creatorID string) *Event {
	return &Event{
		ID:          id,
		Name:        name,
		Description: description,
		Location:    location,
		StartTime:   startTime,
		CreatorID:   creatorID,
	}
}

// EventUpdate holds the mutable event fields for partial updates. Nil means unchanged.
type EventUpdate struct {
	Name           *string
	Description    *string
	Location       *string
	StartTime      *time.Time
	WelcomeMessage *string
	CoverImageKey  *string
	Tags           []string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create persists the event with its caller-assigned ID, credentials, and tags.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Update applies the non-nil fields and returns the updated event.
	Update(ctx context.Context, id string, fields EventUpdate) (*Event, error)
	// Delete removes the event record. Attendee rows and tags go with it.
	Delete(ctx context.Context, id string) error
}

// Upload is a file supplied with a request, already read into memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateEventInput carries the caller-supplied fields for event creation.
type CreateEventInput struct {
	Name           string
	Description    string
	Location       string
	StartTime      time.Time
	WelcomeMessage string
	Tags           []string
}

// Validate returns human-readable messages for missing required fields.
func (in *CreateEventInput) Validate() []string {
	var errs []string
	if in.Name == "" {
		errs = append(errs, "name is required")
	}
	if in.Location == "" {
		errs = append(errs, "location is required")
	}
	if in.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	return errs
}

// DeletionReport records which best-effort cleanup steps failed during event
// deletion. The event record itself is gone whenever a report is returned
// without an error; leftover failures mean orphaned blobs or index entries.
// swagger:model DeletionReport
type DeletionReport struct {
	EventID     string   `json:"event_id"`
	FailedSteps []string `json:"failed_steps,omitempty"`
}

// Clean reports whether every cleanup step succeeded.
func (r *DeletionReport) Clean() bool { return len(r.FailedSteps) == 0 }

// EventService orchestrates the event lifecycle: creation with credential
// issuance and creator indexing, deletion with best-effort cleanup, and the
// owner-facing reads and updates in between.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput, coverImage *Upload, creatorID string) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, fields EventUpdate, coverImage *Upload) (*Event, error)
	// DeleteEvent removes the event and everything derived from it. Cleanup
	// failures are reported, not fatal; only failure to delete the event
	// record itself returns an error.
	DeleteEvent(ctx context.Context, eventID, callerID string) (*DeletionReport, error)
	// ListMyEvents returns the caller's membership references joined with
	// the events they point at.
	ListMyEvents(ctx context.Context, userID string) ([]*MembershipWithEvent, error)
	// QRCodeURL returns a time-limited fetch URL for the event's QR image.
	QRCodeURL(ctx context.Context, eventID string) (string, error)
	// CoverImageURL returns a time-limited fetch URL for the cover image,
	// or "" when the event has none.
	CoverImageURL(ctx context.Context, eventID string) (string, error)
	// SendInvitations emails the event's access code to the given addresses.
	// Returns the number sent and the addresses that failed.
	SendInvitations(ctx context.Context, eventID, callerID string, emails []string) (sent int, failed []string, err error)
	ListInvitations(ctx context.Context, eventID, callerID string, search string, params PaginationParams) ([]*EventInvitation, int, error)
}

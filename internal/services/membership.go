package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"frameit/internal/domain"
)

// upsertAttempts bounds the internal retry loop on serialization conflicts.
const upsertAttempts = 3

type membershipService struct {
	eventRepo    domain.EventRepository
	attendeeRepo domain.AttendeeRepository
	now          func() time.Time
}

// NewMembershipService creates the membership ledger over the given repositories.
func NewMembershipService(eventRepo domain.EventRepository, attendeeRepo domain.AttendeeRepository) domain.MembershipService {
	return &membershipService{
		eventRepo:    eventRepo,
		attendeeRepo: attendeeRepo,
		now:          time.Now,
	}
}

func (s *membershipService) Join(ctx context.Context, eventID string, req domain.JoinRequest) (*domain.Attendee, bool, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, false, fmt.Errorf("%s: %w", errs[0], domain.ErrInvalidInput)
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	now := s.now()
	attendee := &domain.Attendee{
		ID:           uuid.NewString(),
		EventID:      eventID,
		Name:         req.Name,
		Email:        req.Email,
		Relationship: req.Relationship,
		UserID:       req.UserID,
		JoinedAt:     now,
		LastJoinedAt: now,
	}

	// The upsert is keyed on (event, email): a repeat join updates the
	// existing row in place and the repository reports created=false with
	// the original joined_at. Conflicts from concurrent joins are retried
	// here, never surfaced.
	var created bool
	var err error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		created, err = s.attendeeRepo.Upsert(ctx, attendee)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert attendee: %w", err)
	}
	return attendee, created, nil
}

func (s *membershipService) IsMember(ctx context.Context, eventID, identifier string) (bool, error) {
	if identifier == "" {
		return false, nil
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown event means not a member, not a failure.
			return false, nil
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	ok, err := s.attendeeRepo.ExistsByIdentifier(ctx, eventID, identifier)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

func (s *membershipService) ListAttendees(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, 0, domain.ErrForbidden
	}
	attendees, total, err := s.attendeeRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, total, nil
}

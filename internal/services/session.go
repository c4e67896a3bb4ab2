package services

import (
	"context"
	"errors"
	"fmt"

	"frameit/internal/domain"
)

// AccessState is the position of a visitor in the two-step access flow.
type AccessState int

const (
	// StateAwaitingEventID: no event resolved yet. Entered on start and
	// whenever the visitor goes back.
	StateAwaitingEventID AccessState = iota
	// StateAwaitingCode: the event resolved; waiting for its access code.
	StateAwaitingCode
	// StateVerified: the code matched. Terminal.
	StateVerified
)

func (s AccessState) String() string {
	switch s {
	case StateAwaitingEventID:
		return "awaiting_event_id"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateVerified:
		return "verified"
	default:
		return fmt.Sprintf("AccessState(%d)", int(s))
	}
}

// ErrCodeMismatch is returned by SubmitCode when the submitted code does not
// match. The session stays at StateAwaitingCode; the visitor can retry.
var ErrCodeMismatch = errors.New("access code does not match")

// AccessSession drives one visitor through the two-step access flow:
// AwaitingEventID -> AwaitingCode -> Verified. Both entry paths converge
// here: a typed event ID and a scanned QR payload each go through
// SubmitEventID. On success the session records a grant so the visitor skips
// the code challenge on repeat visits within the grant window.
//
// A session belongs to a single visitor and is not safe for concurrent use.
type AccessSession struct {
	access  domain.AccessService
	grants  *GrantCache
	subject string

	state AccessState
	event *domain.Event
}

// NewAccessSession returns a session at StateAwaitingEventID. subject
// identifies the visitor in the grant cache and may be empty.
func NewAccessSession(access domain.AccessService, grants *GrantCache, subject string) *AccessSession {
	return &AccessSession{
		access:  access,
		grants:  grants,
		subject: subject,
		state:   StateAwaitingEventID,
	}
}

// State returns the session's current state.
func (s *AccessSession) State() AccessState { return s.state }

// Event returns the resolved event, or nil before one resolves.
func (s *AccessSession) Event() *domain.Event { return s.event }

// SubmitEventID resolves the claimed event. On success the session advances
// to StateAwaitingCode, or straight to StateVerified when an unexpired grant
// exists for this visitor. ErrNotFound keeps the session where it is.
func (s *AccessSession) SubmitEventID(ctx context.Context, eventID string) error {
	if s.state != StateAwaitingEventID {
		return fmt.Errorf("submit event id in state %s: %w", s.state, domain.ErrInvalidInput)
	}
	event, err := s.access.ResolveEvent(ctx, eventID)
	if err != nil {
		return err
	}
	s.event = event
	if s.grants.Check(event.ID, s.subject) {
		s.state = StateVerified
		return nil
	}
	s.state = StateAwaitingCode
	return nil
}

// SubmitCode challenges the submitted code. On a match the session reaches
// StateVerified and a grant is recorded; on a mismatch it stays at
// StateAwaitingCode and returns ErrCodeMismatch.
func (s *AccessSession) SubmitCode(ctx context.Context, code string) error {
	if s.state != StateAwaitingCode {
		return fmt.Errorf("submit code in state %s: %w", s.state, domain.ErrInvalidInput)
	}
	ok, err := s.access.VerifyAccessCode(ctx, s.event.ID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeMismatch
	}
	s.grants.Record(s.event.ID, s.subject)
	s.state = StateVerified
	return nil
}

// Back returns from StateAwaitingCode to StateAwaitingEventID, dropping the
// resolved event. It is always available from StateAwaitingCode.
func (s *AccessSession) Back() error {
	if s.state != StateAwaitingCode {
		return fmt.Errorf("back in state %s: %w", s.state, domain.ErrInvalidInput)
	}
	s.event = nil
	s.state = StateAwaitingEventID
	return nil
}

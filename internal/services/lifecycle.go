package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"frameit/internal/domain"
)

// deleteEventWorkers bounds the parallel per-user index cleanup during deletion.
const deleteEventWorkers = 8

type eventService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	membershipRepo domain.MembershipRepository
	userRepo       domain.UserRepository
	invitationRepo domain.EventInvitationRepository
	issuer         domain.CredentialIssuer
	blobs          domain.BlobStore
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates the lifecycle coordinator. It consumes the
// credential issuer, the membership index, and the blob store, and keeps the
// two sides of the event/user cross-reference consistent on create and delete.
func NewEventService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	membershipRepo domain.MembershipRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.EventInvitationRepository,
	issuer domain.CredentialIssuer,
	blobs domain.BlobStore,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		issuer:         issuer,
		blobs:          blobs,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// CreateEvent runs the creation sequence strictly in order: allocate the ID,
// issue credentials, upload the cover image, persist the record, index the
// creator. Any failure aborts the remaining steps and surfaces the error;
// already-completed steps are not compensated.
func (s *eventService) CreateEvent(ctx context.Context, input domain.CreateEventInput, coverImage *domain.Upload, creatorID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return nil, fmt.Errorf("creator is required: %w", domain.ErrInvalidInput)
	}
	if errs := input.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, "; "), domain.ErrInvalidInput)
	}

	eventID := uuid.NewString()

	creds, err := s.issuer.IssueCredentials(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("issue credentials: %w", err)
	}

	event := domain.NewEvent(eventID, input.Name, input.Description, input.Location, input.StartTime, creatorID)
	event.WelcomeMessage = input.WelcomeMessage
	event.Tags = input.Tags
	event.AccessCode = creds.AccessCode
	event.QRCodeKey = creds.QRCodeKey

	if coverImage != nil {
		key := coverImageKey(eventID, coverImage.Filename)
		if err := s.blobs.Put(ctx, key, coverImage.ContentType, coverImage.Data); err != nil {
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
		event.CoverImageKey = key
	}

	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	ref := &domain.MembershipRef{
		UserID:   creatorID,
		EventID:  eventID,
		Role:     domain.RoleCreator,
		JoinedAt: now,
	}
	if err := s.membershipRepo.Add(ctx, ref); err != nil {
		return nil, fmt.Errorf("index event under creator: %w", err)
	}

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, fields domain.EventUpdate, coverImage *domain.Upload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}

	if coverImage != nil {
		key := coverImageKey(eventID, coverImage.Filename)
		if err := s.blobs.Put(ctx, key, coverImage.ContentType, coverImage.Data); err != nil {
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
		// A previous cover with a different extension becomes an orphan
		// until the event is deleted; the prefix sweep picks it up then.
		fields.CoverImageKey = &key
	}

	updated, err := s.eventRepo.Update(ctx, eventID, fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent runs the deletion saga. Cleanup steps (blob sweep, per-user
// index updates) are best-effort: failures are logged, recorded in the
// report, and never stop the remaining steps. The event record is deleted
// last, so a crash mid-sequence leaves it discoverable for retry instead of
// silently orphaning references.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) (*domain.DeletionReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}

	report := &domain.DeletionReport{EventID: eventID}
	var mu sync.Mutex
	fail := func(step string, err error) {
		s.logger.WarnContext(ctx, "event deletion cleanup step failed",
			"event_id", eventID, "step", step, "err", err)
		mu.Lock()
		report.FailedSteps = append(report.FailedSteps, fmt.Sprintf("%s: %v", step, err))
		mu.Unlock()
	}

	// Cover image, QR code, and any uploaded photos all live under the
	// event's prefix.
	if err := s.blobs.DeleteByPrefix(ctx, EventBlobPrefix(eventID)); err != nil {
		fail("delete blobs", err)
	}

	affected, err := s.affectedUsers(ctx, event)
	if err != nil {
		fail("list affected users", err)
	}

	// Per-user index cleanup has no ordering requirement between users; one
	// user's failure must not prevent processing the others.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteEventWorkers)
	for _, userID := range affected {
		g.Go(func() error {
			if err := s.membershipRepo.Remove(gctx, userID, eventID); err != nil {
				fail(fmt.Sprintf("remove membership of user %s", userID), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Commit point: only now does the event stop being discoverable.
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return report, nil
}

// affectedUsers returns the creator plus every attendee with a user ID,
// deduplicated. Guest attendees are not user-indexed and need no cleanup.
func (s *eventService) affectedUsers(ctx context.Context, event *domain.Event) ([]string, error) {
	userIDs, err := s.attendeeRepo.ListUserIDsByEventID(ctx, event.ID)
	if err != nil {
		return []string{event.CreatorID}, fmt.Errorf("list attendee user ids: %w", err)
	}
	seen := map[string]struct{}{event.CreatorID: {}}
	affected := []string{event.CreatorID}
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		affected = append(affected, id)
	}
	return affected, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, userID string) ([]*domain.MembershipWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	refs, err := s.membershipRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	result := []*domain.MembershipWithEvent{}
	for _, ref := range refs {
		event, err := s.eventRepo.GetByID(ctx, ref.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event deleted but the reference survived a partial
				// cleanup; skip it defensively.
				continue
			}
			return nil, fmt.Errorf("get event for membership: %w", err)
		}
		result = append(result, &domain.MembershipWithEvent{Membership: ref, Event: event})
	}
	return result, nil
}

func (s *eventService) QRCodeURL(ctx context.Context, eventID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get event: %w", err)
	}
	url, err := s.blobs.PresignGetURL(ctx, event.QRCodeKey)
	if err != nil {
		return "", fmt.Errorf("presign qr code url: %w", err)
	}
	return url, nil
}

func (s *eventService) CoverImageURL(ctx context.Context, eventID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get event: %w", err)
	}
	if event.CoverImageKey == "" {
		return "", nil
	}
	url, err := s.blobs.PresignGetURL(ctx, event.CoverImageKey)
	if err != nil {
		return "", fmt.Errorf("presign cover image url: %w", err)
	}
	return url, nil
}

func (s *eventService) SendInvitations(ctx context.Context, eventID, callerID string, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return 0, nil, domain.ErrForbidden
	}

	hostName := "The event host"
	if host, err := s.userRepo.GetByID(ctx, callerID); err == nil && host.DisplayName != "" {
		hostName = host.DisplayName
	}

	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		inv := &domain.EventInvitation{
			EventID: eventID,
			Email:   email,
			SentAt:  s.now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			failed = append(failed, email)
			continue
		}
		data := &domain.EventInvitationEmailData{
			Email:      email,
			HostName:   hostName,
			EventName:  event.Name,
			EventID:    event.ID,
			AccessCode: event.AccessCode,
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (s *eventService) ListInvitations(ctx context.Context, eventID, callerID string, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

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
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.EventInvitation{}
	}
	return invs, total, nil
}

// coverImageKey builds the cover image blob key, keeping the upload's
// extension and discarding the rest of the client-supplied filename.
func coverImageKey(eventID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".img"
	}
	return fmt.Sprintf("events/%s/cover%s", eventID, ext)
}

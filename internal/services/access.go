package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"frameit/internal/domain"
)

type accessService struct {
	eventRepo domain.EventRepository
}

// NewAccessService returns an AccessService backed by the given event repository.
func NewAccessService(eventRepo domain.EventRepository) domain.AccessService {
	return &accessService{eventRepo: eventRepo}
}

func (s *accessService) ResolveEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, strings.TrimSpace(eventID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *accessService) VerifyAccessCode(ctx context.Context, eventID, submittedCode string) (bool, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	// Trim what the visitor typed; the stored code is compared as stored.
	return strings.TrimSpace(submittedCode) == event.AccessCode, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frameit/internal/domain"
)

type userService struct {
	userRepo domain.UserRepository
	now      func() time.Time
}

// NewUserService returns a UserService over the given repository.
func NewUserService(userRepo domain.UserRepository) domain.UserService {
	return &userService{userRepo: userRepo, now: time.Now}
}

// EnsureUser upserts the identity-provider triple so the user exists locally
// before membership references can point at it.
func (s *userService) EnsureUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if identity.ID == "" {
		return nil, fmt.Errorf("identity id is required: %w", domain.ErrInvalidInput)
	}
	displayName := identity.DisplayName
	if displayName == "" {
		displayName = "user"
	}
	now := s.now()
	user := &domain.User{
		ID:          identity.ID,
		DisplayName: displayName,
		Email:       identity.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/repositories"
)

// UserService handles admin-side user management.
type UserService struct {
	repo      repositories.UserRepository
	publisher EventPublisher
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, publisher EventPublisher) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

// DeleteUser removes a user; the store cascades the delete to their cart.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	publishEvent(s.publisher, EventUserDeleted, map[string]interface{}{"userId": id})
	return nil
}

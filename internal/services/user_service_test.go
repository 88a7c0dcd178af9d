package services_test

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	pub := new(MockPublisher)
	service := services.NewUserService(mockRepo, pub)
	ctx := context.Background()

	mockRepo.On("Delete", uint(1)).Return(nil).Once()
	pub.On("Publish", services.EventsExchange, services.EventUserDeleted, mock.Anything).Return(nil).Once()
	assert.NoError(t, service.DeleteUser(ctx, 1))

	mockRepo.On("Delete", uint(2)).Return(fmt.Errorf("user with ID 2 for deletion: %w", repositories.ErrNotFound)).Once()
	err := service.DeleteUser(ctx, 2)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	mockRepo.On("Delete", uint(3)).Return(fmt.Errorf("connection reset")).Once()
	err = service.DeleteUser(ctx, 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrNotFound)

	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

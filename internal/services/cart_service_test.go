package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var mug = &models.Product{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99"), ImageURL: "/uploads/mug.png"}

func snapshotOf(userID uint, p *models.Product, qty int) interface{} {
	return mock.MatchedBy(func(l *models.CartLine) bool {
		return l.UserID == userID && l.ProductID == p.ID && l.Name == p.Name &&
			l.Price.Equal(p.Price) && l.ImageURL == p.ImageURL && l.Quantity == qty
	})
}

func TestParseCartPolicy(t *testing.T) {
	p, err := services.ParseCartPolicy("accumulate")
	assert.NoError(t, err)
	assert.Equal(t, services.PolicyAccumulate, p)

	p, err = services.ParseCartPolicy("replace")
	assert.NoError(t, err)
	assert.Equal(t, services.PolicyReplace, p)

	_, err = services.ParseCartPolicy("merge")
	assert.Error(t, err)
}

func TestCartService_AddOrUpdateAccumulate(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := services.NewCartService(cartRepo, productRepo, pub)

	productRepo.On("GetByID", uint(1)).Return(mug, nil).Once()
	cartRepo.On("AddQuantity", snapshotOf(5, mug, 2)).Return(nil).Once()
	pub.On("Publish", services.EventsExchange, services.EventCartUpdated, mock.MatchedBy(func(body []byte) bool {
		var event map[string]interface{}
		return json.Unmarshal(body, &event) == nil && event["policy"] == "accumulate" && event["quantity"] == float64(2)
	})).Return(nil).Once()

	err := service.AddOrUpdate(context.Background(), 5, 1, 2, services.PolicyAccumulate)
	require.NoError(t, err)
	cartRepo.AssertNotCalled(t, "SetQuantity", mock.Anything)
	cartRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCartService_AddOrUpdateReplace(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := services.NewCartService(cartRepo, productRepo, nil)

	productRepo.On("GetByID", uint(1)).Return(mug, nil).Once()
	cartRepo.On("SetQuantity", snapshotOf(5, mug, 3)).Return(nil).Once()

	err := service.AddOrUpdate(context.Background(), 5, 1, 3, services.PolicyReplace)
	require.NoError(t, err)
	cartRepo.AssertNotCalled(t, "AddQuantity", mock.Anything)
	cartRepo.AssertExpectations(t)
}

func TestCartService_AddOrUpdateRejectsBadInput(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := services.NewCartService(cartRepo, productRepo, nil)
	ctx := context.Background()

	for _, qty := range []int{0, -1, models.MaxCartQuantity + 1, math.MaxInt} {
		for _, policy := range []services.CartPolicy{services.PolicyAccumulate, services.PolicyReplace} {
			err := service.AddOrUpdate(ctx, 5, 1, qty, policy)
			assert.ErrorIs(t, err, services.ErrInvalidQuantity)
		}
	}

	assert.ErrorIs(t, service.AddOrUpdate(ctx, 5, 0, 1, services.PolicyReplace), services.ErrMissingFields)

	productRepo.On("GetByID", uint(1)).Return(mug, nil).Once()
	err := service.AddOrUpdate(ctx, 5, 1, 1, services.CartPolicy("merge"))
	assert.ErrorIs(t, err, services.ErrValidation)

	productRepo.On("GetByID", uint(42)).Return(nil, fmt.Errorf("product with ID 42: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.AddOrUpdate(ctx, 5, 42, 1, services.PolicyAccumulate), services.ErrProductNotFound)

	cartRepo.AssertNotCalled(t, "AddQuantity", mock.Anything)
	cartRepo.AssertNotCalled(t, "SetQuantity", mock.Anything)
}

func TestCartService_AddOrUpdateForeignKeyViolation(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := services.NewCartService(cartRepo, productRepo, nil)
	ctx := context.Background()
	fkErr := fmt.Errorf("failed to upsert: %w", repositories.ErrForeignKeyViolation)

	// Product deleted between lookup and insert.
	productRepo.On("GetByID", uint(1)).Return(mug, nil).Once()
	cartRepo.On("SetQuantity", mock.Anything).Return(fkErr).Once()
	productRepo.On("GetByID", uint(1)).Return(nil, fmt.Errorf("gone: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.AddOrUpdate(ctx, 5, 1, 1, services.PolicyReplace), services.ErrProductNotFound)

	// Product still there, so the user account is what vanished.
	productRepo.On("GetByID", uint(1)).Return(mug, nil).Twice()
	cartRepo.On("SetQuantity", mock.Anything).Return(fkErr).Once()
	assert.ErrorIs(t, service.AddOrUpdate(ctx, 5, 1, 1, services.PolicyReplace), services.ErrUserNotFound)

	productRepo.AssertExpectations(t)
}

func TestCartService_AddOrUpdateSumOverLimit(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := services.NewCartService(cartRepo, productRepo, pub)

	productRepo.On("GetByID", uint(1)).Return(mug, nil).Once()
	cartRepo.On("AddQuantity", snapshotOf(5, mug, 2)).
		Return(fmt.Errorf("cart line: %w", repositories.ErrQuantityLimit)).Once()

	err := service.AddOrUpdate(context.Background(), 5, 1, 2, services.PolicyAccumulate)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	cartRepo.AssertExpectations(t)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_GetCart(t *testing.T) {
	cartRepo := new(MockCartRepository)
	service := services.NewCartService(cartRepo, new(MockProductRepository), nil)

	lines := []models.CartLine{{ID: 1, UserID: 5, ProductID: 1, Quantity: 2}}
	cartRepo.On("GetByUser", uint(5)).Return(lines, nil).Once()

	got, err := service.GetCart(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestCartService_RemoveLine(t *testing.T) {
	cartRepo := new(MockCartRepository)
	pub := new(MockPublisher)
	service := services.NewCartService(cartRepo, new(MockProductRepository), pub)
	ctx := context.Background()

	cartRepo.On("Delete", uint(5), uint(1)).Return(nil).Once()
	pub.On("Publish", services.EventsExchange, services.EventCartLineRemoved, mock.Anything).Return(nil).Once()
	assert.NoError(t, service.RemoveLine(ctx, 5, 1))

	cartRepo.On("Delete", uint(5), uint(2)).Return(fmt.Errorf("cart line: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.RemoveLine(ctx, 5, 2), services.ErrCartLineNotFound)

	cartRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCartService_ClearCart(t *testing.T) {
	cartRepo := new(MockCartRepository)
	pub := new(MockPublisher)
	service := services.NewCartService(cartRepo, new(MockProductRepository), pub)
	ctx := context.Background()

	cartRepo.On("DeleteByUser", uint(5)).Return(int64(3), nil).Once()
	pub.On("Publish", services.EventsExchange, services.EventCartCleared, mock.Anything).Return(nil).Once()
	assert.NoError(t, service.ClearCart(ctx, 5))

	// Empty cart: still succeeds, nothing published.
	cartRepo.On("DeleteByUser", uint(5)).Return(int64(0), nil).Once()
	assert.NoError(t, service.ClearCart(ctx, 5))

	cartRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

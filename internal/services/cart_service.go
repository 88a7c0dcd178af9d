package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartPolicy decides what happens when a product already in the cart is added again.
type CartPolicy string

const (
	// PolicyAccumulate adds the requested quantity to the existing one.
	PolicyAccumulate CartPolicy = "accumulate"
	// PolicyReplace overwrites the existing quantity with the requested one.
	PolicyReplace CartPolicy = "replace"
)

// ParseCartPolicy converts a configuration value into a CartPolicy.
func ParseCartPolicy(s string) (CartPolicy, error) {
	switch p := CartPolicy(s); p {
	case PolicyAccumulate, PolicyReplace:
		return p, nil
	}
	return "", fmt.Errorf("unknown cart policy %q", s)
}

// CartService manages per-user cart lines.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, publisher EventPublisher) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// GetCart returns the user's lines in the order they were first added.
func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return s.cartRepo.GetByUser(ctx, userID)
}

// AddOrUpdate puts quantity of productID into the user's cart. A new line
// snapshots the product's name, price and image; an existing line is resolved
// by policy. The store's unique (user, product) index serializes concurrent calls.
func (s *CartService) AddOrUpdate(ctx context.Context, userID, productID uint, quantity int, policy CartPolicy) error {
	if quantity < 1 || quantity > models.MaxCartQuantity {
		return ErrInvalidQuantity
	}
	if productID == 0 {
		return ErrMissingFields
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	line := &models.CartLine{
		UserID:    userID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Quantity:  quantity,
	}

	switch policy {
	case PolicyAccumulate:
		err = s.cartRepo.AddQuantity(ctx, line)
	case PolicyReplace:
		err = s.cartRepo.SetQuantity(ctx, line)
	default:
		return validationf("unknown cart policy %q", policy)
	}
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrForeignKeyViolation):
			return s.missingReference(ctx, productID)
		case errors.Is(err, repositories.ErrQuantityLimit):
			return ErrInvalidQuantity
		}
		return err
	}

	publishEvent(s.publisher, EventCartUpdated, map[string]interface{}{
		"userId":    userID,
		"productId": productID,
		"quantity":  quantity,
		"policy":    string(policy),
	})
	return nil
}

// missingReference tells apart a product deleted mid-request from a user
// whose account was deleted while their token is still valid.
func (s *CartService) missingReference(ctx context.Context, productID uint) error {
	if _, err := s.productRepo.GetByID(ctx, productID); errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return ErrUserNotFound
}

// RemoveLine deletes the one line for (userID, productID).
func (s *CartService) RemoveLine(ctx context.Context, userID, productID uint) error {
	if err := s.cartRepo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCartLineNotFound
		}
		return err
	}
	publishEvent(s.publisher, EventCartLineRemoved, map[string]interface{}{
		"userId":    userID,
		"productId": productID,
	})
	return nil
}

// ClearCart deletes every line of the user. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	removed, err := s.cartRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if removed > 0 {
		publishEvent(s.publisher, EventCartCleared, map[string]interface{}{
			"userId":  userID,
			"removed": removed,
		})
	}
	return nil
}

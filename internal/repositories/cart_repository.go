package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for cart line data access.
// AddQuantity and SetQuantity insert the line when (UserID, ProductID) is new;
// on conflict they only touch the quantity, never the snapshot columns.
type CartRepository interface {
	GetByUser(ctx context.Context, userID uint) ([]models.CartLine, error)
	AddQuantity(ctx context.Context, line *models.CartLine) error
	SetQuantity(ctx context.Context, line *models.CartLine) error
	Delete(ctx context.Context, userID, productID uint) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

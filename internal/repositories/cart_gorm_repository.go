package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var cartLineKey = []clause.Column{{Name: "user_id"}, {Name: "product_id"}}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUser returns the user's cart lines in insertion order.
func (r *GORMCartRepository) GetByUser(ctx context.Context, userID uint) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for user %d: %w", userID, err)
	}
	return lines, nil
}

// AddQuantity inserts the line or adds line.Quantity to the stored quantity.
// ErrQuantityLimit when the sum would exceed models.MaxCartQuantity; the
// stored line is left untouched in that case.
func (r *GORMCartRepository) AddQuantity(ctx context.Context, line *models.CartLine) error {
	onConflict := clause.OnConflict{
		Columns:   cartLineKey,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("carts.quantity + excluded.quantity"),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("carts.quantity <= ? - excluded.quantity", models.MaxCartQuantity),
		}},
	}
	return r.upsert(ctx, line, onConflict)
}

// SetQuantity inserts the line or overwrites the stored quantity with line.Quantity.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, line *models.CartLine) error {
	return r.upsert(ctx, line, clause.OnConflict{
		Columns:   cartLineKey,
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	})
}

// upsert runs a single INSERT ... ON CONFLICT statement so that the unique
// (user_id, product_id) index decides between insert and update.
func (r *GORMCartRepository) upsert(ctx context.Context, line *models.CartLine, onConflict clause.OnConflict) error {
	if line.Quantity < 1 || line.Quantity > models.MaxCartQuantity {
		return fmt.Errorf("quantity %d: %w", line.Quantity, ErrQuantityLimit)
	}

	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(onConflict).
		Create(line)
	if res.Error != nil {
		return fmt.Errorf("failed to upsert cart line (user %d, product %d): %w", line.UserID, line.ProductID, translate(res.Error))
	}
	// The conflict WHERE filtered out the update.
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line (user %d, product %d): %w", line.UserID, line.ProductID, ErrQuantityLimit)
	}
	return nil
}

// Delete removes exactly one line. ErrNotFound when nothing matched.
func (r *GORMCartRepository) Delete(ctx context.Context, userID, productID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line (user %d, product %d): %w", userID, productID, ErrNotFound)
	}
	return nil
}

// DeleteByUser clears the user's cart and reports how many lines were removed.
func (r *GORMCartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

package models

import (
	"github.com/shopspring/decimal"
)

// MaxCartQuantity bounds the quantity of a single cart line.
const MaxCartQuantity = 10000

// CartLine is one product in a user's cart. Name, Price and ImageURL are copied
// from the product when the line is first inserted and are never refreshed.
type CartLine struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint            `json:"userId" gorm:"not null;uniqueIndex:idx_carts_user_product"`
	ProductID uint            `json:"productId" gorm:"not null;uniqueIndex:idx_carts_user_product"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL  string          `json:"imageUrl" gorm:"type:varchar(512);not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`

	User    User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product Product `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name.
func (CartLine) TableName() string {
	return "carts"
}

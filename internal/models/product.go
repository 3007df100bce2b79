package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a purchasable item in the catalog.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(64)" validate:"required"`
	Title       string          `json:"title" gorm:"type:varchar(255)" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	ImageRef    string          `json:"imageRef"`
	Position    int             `json:"-" gorm:"index"` // catalog display order
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// Available reports how many more units can go into a cart that already
// holds inCart units of this product.
func (p Product) Available(inCart int) int {
	return p.Stock - inCart
}

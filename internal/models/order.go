package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Buyer holds the checkout form data.
type Buyer struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
}

// LineSnapshot freezes a cart line's title and price at purchase time.
type LineSnapshot struct {
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	TitleAtPurchase string          `json:"titleAtPurchase"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

// Subtotal returns price times quantity for the snapshot.
func (l LineSnapshot) Subtotal() decimal.Decimal {
	return l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a completed checkout. Orders are never modified after creation.
type Order struct {
	ID        string          `json:"id"`
	Buyer     Buyer           `json:"buyer"`
	Lines     []LineSnapshot  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderPlacedEvent is published after an order has been stored.
type OrderPlacedEvent struct {
	OrderID   string          `json:"orderId"`
	Email     string          `json:"email"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

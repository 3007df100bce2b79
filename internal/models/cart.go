package models

// CartLine is one product selection in the cart. A cart never holds two
// lines for the same product.
type CartLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

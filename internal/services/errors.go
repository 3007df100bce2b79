package services

import (
	"errors"
	"strings"
)

var (
	// ErrLoadFailure means the catalog could not be fetched or parsed.
	ErrLoadFailure = errors.New("catalog load failed")
	// ErrOutOfStock means the cart already holds every available unit.
	ErrOutOfStock = errors.New("out of stock")
	// ErrEmptyCart means checkout was attempted with nothing to buy.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidBuyerInfo means required buyer fields are missing or malformed.
	ErrInvalidBuyerInfo = errors.New("invalid buyer info")
)

// FieldError describes one rejected buyer field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// BuyerInfoError lists every buyer field that failed validation.
// It matches ErrInvalidBuyerInfo with errors.Is.
type BuyerInfoError struct {
	Fields []FieldError
}

func (e *BuyerInfoError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return ErrInvalidBuyerInfo.Error() + ": " + strings.Join(parts, ", ")
}

func (e *BuyerInfoError) Is(target error) bool {
	return target == ErrInvalidBuyerInfo
}

// FieldNames returns the rejected field names in validation order.
func (e *BuyerInfoError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

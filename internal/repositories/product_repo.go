package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for catalog data access.
// GetAll returns products in catalog order.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	ReplaceAll(products []models.Product) error
	DecrementStock(id string, quantity int) error
}

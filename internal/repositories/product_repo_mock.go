package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products []models.Product
	index    map[string]int
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		index: make(map[string]int),
	}
}

// GetAll returns all products in catalog order.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, len(r.products))
	copy(productList, r.products)
	return productList, nil
}

// GetByID returns a copy of the product with the given ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	product := r.products[i]
	return &product, nil
}

// ReplaceAll swaps the whole catalog for products, keeping their order.
func (r *MockProductRepository) ReplaceAll(products []models.Product) error {
	index := make(map[string]int, len(products))
	list := make([]models.Product, len(products))
	for i, p := range products {
		if _, dup := index[p.ID]; dup {
			return fmt.Errorf("duplicate product ID %s", p.ID)
		}
		p.Position = i
		list[i] = p
		index[p.ID] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = list
	r.index = index
	return nil
}

// DecrementStock lowers a product's stock by quantity, never below zero.
func (r *MockProductRepository) DecrementStock(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	r.products[i].Stock = max(0, r.products[i].Stock-quantity)
	return nil
}

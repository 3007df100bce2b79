package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// CartSlotKey names the storage slot holding the serialized cart.
const CartSlotKey = "storefront_cart"

// CartRepository persists the serialized cart as a single document.
type CartRepository interface {
	Load() ([]models.CartLine, error)
	Save(lines []models.CartLine) error
}

// SlotCartRepository stores the cart as JSON in a SlotStore.
type SlotCartRepository struct {
	store SlotStore
	key   string
}

// NewSlotCartRepository creates a cart repository over store using CartSlotKey.
func NewSlotCartRepository(store SlotStore) *SlotCartRepository {
	return &SlotCartRepository{store: store, key: CartSlotKey}
}

// Load returns the stored lines. A slot that was never written yields an
// empty cart; undecodable contents yield ErrPersistenceCorrupt.
func (r *SlotCartRepository) Load() ([]models.CartLine, error) {
	raw, err := r.store.Load(r.key)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return nil, nil
		}
		return nil, err
	}
	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("%w: cart: %v", ErrPersistenceCorrupt, err)
	}
	return lines, nil
}

// Save overwrites the cart slot with lines.
func (r *SlotCartRepository) Save(lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return r.store.Save(r.key, raw)
}

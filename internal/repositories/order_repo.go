package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/models"
)

// OrderHistorySlotKey names the storage slot holding the order history.
const OrderHistorySlotKey = "sim_orders"

// ErrOrderNotFound is returned when an order id is not in the history.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order history access.
// Orders are append-only.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
}

// SlotOrderRepository keeps the whole order history as one JSON array in a
// SlotStore and rewrites it on every new order.
type SlotOrderRepository struct {
	store SlotStore
	key   string
	mu    sync.Mutex
}

// NewSlotOrderRepository creates an order repository over store using OrderHistorySlotKey.
func NewSlotOrderRepository(store SlotStore) *SlotOrderRepository {
	return &SlotOrderRepository{store: store, key: OrderHistorySlotKey}
}

// GetAll returns the history oldest first. Corrupt history reads as empty
// and is reported with ErrPersistenceCorrupt alongside the empty slice.
func (r *SlotOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// GetByID returns the order with the given ID.
func (r *SlotOrderRepository) GetByID(id string) (*models.Order, error) {
	orders, err := r.GetAll()
	if err != nil && !errors.Is(err, ErrPersistenceCorrupt) {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// Create appends order to the history: read all, append, write all back.
func (r *SlotOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil && !errors.Is(err, ErrPersistenceCorrupt) {
		return err
	}
	orders = append(orders, *order)

	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode order history: %w", err)
	}
	if err := r.store.Save(r.key, raw); err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return nil
}

func (r *SlotOrderRepository) load() ([]models.Order, error) {
	raw, err := r.store.Load(r.key)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return []models.Order{}, nil
		}
		return nil, err
	}
	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return []models.Order{}, fmt.Errorf("%w: order history: %v", ErrPersistenceCorrupt, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

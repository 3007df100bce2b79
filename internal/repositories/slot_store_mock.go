package repositories

import (
	"fmt"
	"sync"
)

// MockSlotStore is an in-memory implementation of SlotStore.
type MockSlotStore struct {
	slots map[string][]byte
	mu    sync.RWMutex
}

// NewMockSlotStore creates a new instance of MockSlotStore.
func NewMockSlotStore() *MockSlotStore {
	return &MockSlotStore{
		slots: make(map[string][]byte),
	}
}

// Load returns a copy of the slot contents or ErrSlotEmpty.
func (s *MockSlotStore) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[key]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", key, ErrSlotEmpty)
	}
	return append([]byte(nil), data...), nil
}

// Save overwrites the slot with data.
func (s *MockSlotStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = append([]byte(nil), data...)
	return nil
}

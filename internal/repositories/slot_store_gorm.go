package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMSlotStore is a GORM implementation of SlotStore backed by the slots table.
type GORMSlotStore struct {
	db *gorm.DB
}

// NewGORMSlotStore creates a new instance of GORMSlotStore.
func NewGORMSlotStore(db *gorm.DB) *GORMSlotStore {
	return &GORMSlotStore{
		db: db,
	}
}

// Load reads the document stored under key.
func (s *GORMSlotStore) Load(key string) ([]byte, error) {
	var slot models.Slot
	if err := s.db.First(&slot, "slot_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("slot %s: %w", key, ErrSlotEmpty)
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", key, err)
	}
	return []byte(slot.Value), nil
}

// Save upserts the document stored under key.
func (s *GORMSlotStore) Save(key string, data []byte) error {
	slot := models.Slot{Key: key, Value: string(data)}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}

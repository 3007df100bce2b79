package repositories

import "errors"

var (
	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")
	// ErrSlotEmpty is returned when a storage slot has never been written.
	ErrSlotEmpty = errors.New("storage slot is empty")
	// ErrPersistenceCorrupt is returned when a slot holds data that cannot be decoded.
	// Callers treat it as an empty slot.
	ErrPersistenceCorrupt = errors.New("stored data is corrupt")
)

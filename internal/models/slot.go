package models

import "time"

// Slot is a named storage cell holding one whole JSON document.
type Slot struct {
	Key       string `gorm:"column:slot_key;primaryKey;type:varchar(128)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

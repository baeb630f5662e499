package models

import (
	"time"
)

// StorageItem is one key/value entry of the local automation store. The whole
// flow list lives under a single key, the same way the browser builder keeps
// it in localStorage.
type StorageItem struct {
	Key       string    `gorm:"column:item_key;primaryKey;type:varchar(255)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StorageItem) TableName() string {
	return "storage_items"
}

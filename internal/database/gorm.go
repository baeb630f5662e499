package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"whatsapp-autoreply/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the local store database and migrates its schema
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if err := db.AutoMigrate(&models.StorageItem{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}

	log.Printf("Local store ready (%s)", driver)
	return db, nil
}

// KVStorage keeps string values by key in the storage_items table
type KVStorage struct {
	DB *gorm.DB
}

func NewKVStorage(db *gorm.DB) *KVStorage {
	return &KVStorage{DB: db}
}

func (s *KVStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var item models.StorageItem
	err := s.DB.WithContext(ctx).Where("item_key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return item.Value, true, nil
}

func (s *KVStorage) SetItem(ctx context.Context, key, value string) error {
	item := models.StorageItem{Key: key, Value: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
}

package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate auto-migrates the core models. Separated from NewConnection so
// tests can run it against their own driver.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Order{},
		&model.OrderHistoryEntry{},
		&model.WalletTransaction{},
		&model.ReferralIncomeLog{},
		&model.Investment{},
		&model.PayoutRate{},
		&model.ReferralLevel{},
		&model.Notification{},
		&model.Announcement{},
	)
}

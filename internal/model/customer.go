package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a directory record the order workflow operates on.
// Measurements are stored as a free-form JSON document: the measurement
// team owns the schema and it changes per garment category.
type Customer struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code             string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"` // e.g. CUST-2026-001
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`
	Mobile           string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"mobile"`
	Email            string         `gorm:"type:varchar(255)" json:"email"`
	Address          string         `gorm:"type:text" json:"address"`
	Measurements     string         `gorm:"type:jsonb" json:"measurements"`
	MeasurementPhoto string         `gorm:"type:text" json:"measurement_photo"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutRate is one admin-mutable row of the piece-rate table:
// key (role x garment category) -> flat amount in rupees. Changes apply
// prospectively only; rates already paid out are never recomputed.
type PayoutRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"key"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r *PayoutRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReferralLevel maps an upline level (1..6) to its commission percent.
// Each level draws its percent from the same pool independently, so the
// percents are not required to sum to 100.
type ReferralLevel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Level     int             `gorm:"uniqueIndex;not null" json:"level"`
	Percent   decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"percent"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (l *ReferralLevel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment status constants
const (
	InvestmentActive    = "ACTIVE"
	InvestmentCompleted = "COMPLETED"
)

// ReturnMultiple is the fixed target-return multiple applied to every
// new investment: total target return = principal * 3.
const ReturnMultiple = 3

// Investment is one principal contribution to the profit-sharing pool.
// Invariant: ReturnedSoFar <= TotalTargetReturn; Status flips to
// COMPLETED exactly when equality is reached.
type Investment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PrincipalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"principal_amount"`
	TotalTargetReturn decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_target_return"`
	ReturnedSoFar     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"returned_so_far"`
	Status            string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	StartDate         time.Time       `gorm:"type:date;not null" json:"start_date"`
	LastPayoutDate    *time.Time      `gorm:"type:date" json:"last_payout_date"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

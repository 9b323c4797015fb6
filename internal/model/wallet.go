package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction type constants
const (
	TxTypeCredit = "CREDIT"
	TxTypeDebit  = "DEBIT"
)

// WalletTransaction is one immutable ledger entry. The ledger is
// append-only: an account's balance is always recomputable as
// sum(credits) - sum(debits) over its entries, and no cached balance
// is trusted over the log.
type WalletTransaction struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type              string          `gorm:"type:varchar(10);not null" json:"type"` // CREDIT, DEBIT
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	RelatedBillNumber string          `gorm:"type:varchar(50);index" json:"related_bill_number"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
}

func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ReferralIncomeLog records one commission payment for reporting and
// audit. The money movement itself is a parallel WalletTransaction.
type ReferralIncomeLog struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"recipient_id"`
	FromUserName string          `gorm:"type:varchar(255);not null" json:"from_user_name"`
	FromUserRole string          `gorm:"type:varchar(30);not null" json:"from_user_role"`
	Action       string          `gorm:"type:text" json:"action"`
	Level        int             `gorm:"not null" json:"level"` // 1..6
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (l *ReferralIncomeLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

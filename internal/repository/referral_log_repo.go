package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReferralLogRepository stores the audit trail of commission payments.
type ReferralLogRepository interface {
	Create(ctx context.Context, log *model.ReferralIncomeLog) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, page, limit int) ([]model.ReferralIncomeLog, int64, error)
	SumByRecipientLevel(ctx context.Context, recipientID uuid.UUID, level int) (decimal.Decimal, error)
}

type referralLogRepository struct {
	db *gorm.DB
}

func NewReferralLogRepository(db *gorm.DB) ReferralLogRepository {
	return &referralLogRepository{db: db}
}

func (r *referralLogRepository) Create(ctx context.Context, log *model.ReferralIncomeLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *referralLogRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, page, limit int) ([]model.ReferralIncomeLog, int64, error) {
	var logs []model.ReferralIncomeLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ReferralIncomeLog{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("recipient_id = ?", recipientID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *referralLogRepository) SumByRecipientLevel(ctx context.Context, recipientID uuid.UUID, level int) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.ReferralIncomeLog{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("recipient_id = ? AND level = ?", recipientID, level).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

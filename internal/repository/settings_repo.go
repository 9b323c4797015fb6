package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
)

// SettingsRepository stores the admin-mutable configuration tables:
// piece rates and referral level percents.
type SettingsRepository interface {
	ListRates(ctx context.Context) ([]model.PayoutRate, error)
	UpsertRate(ctx context.Context, rate *model.PayoutRate) error
	ListReferralLevels(ctx context.Context) ([]model.ReferralLevel, error)
	UpsertReferralLevel(ctx context.Context, level *model.ReferralLevel) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) ListRates(ctx context.Context) ([]model.PayoutRate, error) {
	var rates []model.PayoutRate
	if err := GetDB(ctx, r.db).Order("key asc").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *settingsRepository) UpsertRate(ctx context.Context, rate *model.PayoutRate) error {
	db := GetDB(ctx, r.db)
	var existing model.PayoutRate
	err := db.First(&existing, "key = ?", rate.Key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(rate).Error
	}
	if err != nil {
		return err
	}
	existing.Amount = rate.Amount
	return db.Save(&existing).Error
}

func (r *settingsRepository) ListReferralLevels(ctx context.Context) ([]model.ReferralLevel, error) {
	var levels []model.ReferralLevel
	if err := GetDB(ctx, r.db).Order("level asc").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *settingsRepository) UpsertReferralLevel(ctx context.Context, level *model.ReferralLevel) error {
	db := GetDB(ctx, r.db)
	var existing model.ReferralLevel
	err := db.First(&existing, "level = ?", level.Level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(level).Error
	}
	if err != nil {
		return err
	}
	existing.Percent = level.Percent
	return db.Save(&existing).Error
}

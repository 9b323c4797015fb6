package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/payout"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RateEntry struct {
	Key    string `json:"key" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type UpdateRatesRequest struct {
	Rates []RateEntry `json:"rates" binding:"required,dive"`
}

type LevelEntry struct {
	Level   int    `json:"level" binding:"required,min=1,max=6"`
	Percent string `json:"percent" binding:"required"`
}

type UpdateReferralLevelsRequest struct {
	Levels []LevelEntry `json:"levels" binding:"required,dive"`
}

// --- Interface ---

// SettingsService serves the admin-mutable rate configuration. Changes
// apply prospectively only: payouts already posted keep the rate that
// was in effect at the time.
type SettingsService interface {
	RateTable(ctx context.Context) (payout.RateTable, error)
	ReferralLevels(ctx context.Context) (map[int]decimal.Decimal, error)
	ListRates(ctx context.Context) ([]model.PayoutRate, error)
	ListReferralLevels(ctx context.Context) ([]model.ReferralLevel, error)
	UpdateRates(ctx context.Context, req UpdateRatesRequest) error
	UpdateReferralLevels(ctx context.Context, req UpdateReferralLevelsRequest) error
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

// --- Implementation ---

func (s *settingsService) RateTable(ctx context.Context) (payout.RateTable, error) {
	rows, err := s.settingsRepo.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}
	table := make(payout.RateTable, len(rows))
	for _, row := range rows {
		table[row.Key] = row.Amount
	}
	return table, nil
}

func (s *settingsService) ReferralLevels(ctx context.Context) (map[int]decimal.Decimal, error) {
	rows, err := s.settingsRepo.ListReferralLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load referral levels: %w", err)
	}
	levels := make(map[int]decimal.Decimal, len(rows))
	for _, row := range rows {
		levels[row.Level] = row.Percent
	}
	return levels, nil
}

func (s *settingsService) ListRates(ctx context.Context) ([]model.PayoutRate, error) {
	return s.settingsRepo.ListRates(ctx)
}

func (s *settingsService) ListReferralLevels(ctx context.Context) ([]model.ReferralLevel, error) {
	return s.settingsRepo.ListReferralLevels(ctx)
}

func (s *settingsService) UpdateRates(ctx context.Context, req UpdateRatesRequest) error {
	for _, entry := range req.Rates {
		amount, err := decimal.NewFromString(entry.Amount)
		if err != nil {
			return fmt.Errorf("%w: invalid amount for rate %s", ErrValidation, entry.Key)
		}
		if amount.IsNegative() {
			return fmt.Errorf("%w: rate %s must not be negative", ErrValidation, entry.Key)
		}
		if err := s.settingsRepo.UpsertRate(ctx, &model.PayoutRate{Key: entry.Key, Amount: amount}); err != nil {
			return fmt.Errorf("failed to update rate %s: %w", entry.Key, err)
		}
	}
	return nil
}

func (s *settingsService) UpdateReferralLevels(ctx context.Context, req UpdateReferralLevelsRequest) error {
	for _, entry := range req.Levels {
		percent, err := decimal.NewFromString(entry.Percent)
		if err != nil {
			return fmt.Errorf("%w: invalid percent for level %d", ErrValidation, entry.Level)
		}
		if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: level %d percent must be between 0 and 100", ErrValidation, entry.Level)
		}
		if err := s.settingsRepo.UpsertReferralLevel(ctx, &model.ReferralLevel{Level: entry.Level, Percent: percent}); err != nil {
			return fmt.Errorf("failed to update referral level %d: %w", entry.Level, err)
		}
	}
	return nil
}

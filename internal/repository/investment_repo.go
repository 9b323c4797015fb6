package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvestmentRepository stores principal contributions and their payout
// progress.
type InvestmentRepository interface {
	Create(ctx context.Context, investment *model.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Investment, error)
	ListActive(ctx context.Context) ([]model.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Investment, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Investment, int64, error)
	Update(ctx context.Context, investment *model.Investment) error
}

type investmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Create(ctx context.Context, investment *model.Investment) error {
	return GetDB(ctx, r.db).Create(investment).Error
}

func (r *investmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Investment, error) {
	var investment model.Investment
	if err := GetDB(ctx, r.db).First(&investment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &investment, nil
}

func (r *investmentRepository) ListActive(ctx context.Context) ([]model.Investment, error) {
	var investments []model.Investment
	if err := GetDB(ctx, r.db).
		Where("status = ?", model.InvestmentActive).
		Order("created_at asc").
		Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *investmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Investment, error) {
	var investments []model.Investment
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *investmentRepository) List(ctx context.Context, status string, page, limit int) ([]model.Investment, int64, error) {
	var investments []model.Investment
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Investment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("created_at desc").Offset(offset).Limit(limit)
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if err := fetch.Find(&investments).Error; err != nil {
		return nil, 0, err
	}

	return investments, total, nil
}

func (r *investmentRepository) Update(ctx context.Context, investment *model.Investment) error {
	return GetDB(ctx, r.db).Save(investment).Error
}

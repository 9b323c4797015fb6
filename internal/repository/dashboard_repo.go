package repository

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate queries behind the admin
// dashboard. All ranges are inclusive on both ends.
type DashboardRepository interface {
	CountBookedOrders(ctx context.Context, start, end time.Time) (int, string, error)
	CountDeliveredOrders(ctx context.Context, start, end time.Time) (int, error)
	SumCollected(ctx context.Context, start, end time.Time) (string, error)
	SumPendingReceivables(ctx context.Context) (string, error)
	CountNewCustomers(ctx context.Context, start, end time.Time) (int, error)
	PipelineByStatus(ctx context.Context) ([]model.StatusCount, error)
	TopGarments(ctx context.Context, start, end time.Time, limit int) ([]GarmentRankRow, error)
}

// GarmentRankRow carries decimal sums as text so the service layer can
// parse them without float rounding.
type GarmentRankRow struct {
	GarmentType string
	TotalOrders int
	TotalValue  string
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountBookedOrders(ctx context.Context, start, end time.Time) (int, string, error) {
	var result struct {
		Count int
		Value string
	}
	if err := GetDB(ctx, r.db).Table("orders").
		Select("COUNT(*) as count, COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as value").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Scan(&result).Error; err != nil {
		return 0, "", fmt.Errorf("failed to count booked orders: %w", err)
	}
	return result.Count, result.Value, nil
}

func (r *dashboardRepository) CountDeliveredOrders(ctx context.Context, start, end time.Time) (int, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("status = ? AND updated_at >= ? AND updated_at <= ?", model.StatusDelivered, start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count delivered orders: %w", err)
	}
	return int(count), nil
}

func (r *dashboardRepository) SumCollected(ctx context.Context, start, end time.Time) (string, error) {
	var result struct {
		Value string
	}
	if err := GetDB(ctx, r.db).Table("orders").
		Select("COALESCE(CAST(SUM(total_amount - pending_amount) AS TEXT), '0') as value").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Scan(&result).Error; err != nil {
		return "", fmt.Errorf("failed to sum collections: %w", err)
	}
	return result.Value, nil
}

func (r *dashboardRepository) SumPendingReceivables(ctx context.Context) (string, error) {
	var result struct {
		Value string
	}
	if err := GetDB(ctx, r.db).Table("orders").
		Select("COALESCE(CAST(SUM(pending_amount) AS TEXT), '0') as value").
		Where("pending_amount > 0").
		Scan(&result).Error; err != nil {
		return "", fmt.Errorf("failed to sum receivables: %w", err)
	}
	return result.Value, nil
}

func (r *dashboardRepository) CountNewCustomers(ctx context.Context, start, end time.Time) (int, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Customer{}).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count new customers: %w", err)
	}
	return int(count), nil
}

func (r *dashboardRepository) PipelineByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var buckets []model.StatusCount
	if err := GetDB(ctx, r.db).Table("orders").
		Select("status, COUNT(*) as count").
		Where("status <> ?", model.StatusDelivered).
		Group("status").
		Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to bucket pipeline: %w", err)
	}
	return buckets, nil
}

func (r *dashboardRepository) TopGarments(ctx context.Context, start, end time.Time, limit int) ([]GarmentRankRow, error) {
	var rows []GarmentRankRow
	if err := GetDB(ctx, r.db).Table("orders").
		Select("garment_type, COUNT(*) as total_orders, COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as total_value").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("garment_type").
		Order("total_orders DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to rank garments: %w", err)
	}
	return rows, nil
}

package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderListFilter narrows order listings. Zero values mean "no filter".
type OrderListFilter struct {
	Status           string
	GarmentType      string
	CustomerID       *uuid.UUID
	AssignedWorkerID *uuid.UUID
	Page             int
	Limit            int
}

// OrderRepository is the order directory collaborator. History rows are
// append-only: there is deliberately no update or delete for them.
// Orders are soft-deleted so issued bill numbers are never reused.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByBillNumber(ctx context.Context, billNumber string) (*model.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	AppendHistory(ctx context.Context, entry *model.OrderHistoryEntry) error
	Delete(ctx context.Context, billNumber string) error
	LastBillNumber(ctx context.Context, prefix string) (string, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetByBillNumber(ctx context.Context, billNumber string) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Customer").
		First(&order, "bill_number = ?", billNumber).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.GarmentType != "" {
			q = q.Where("garment_type = ?", filter.GarmentType)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.AssignedWorkerID != nil {
			q = q.Where("assigned_worker_id = ?", *filter.AssignedWorkerID)
		}
		return q
	}

	if err := apply(db.Model(&model.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	// Omit History so the association writer never touches existing
	// audit rows; new entries go through AppendHistory only.
	return GetDB(ctx, r.db).Omit("History").Save(order).Error
}

func (r *orderRepository) AppendHistory(ctx context.Context, entry *model.OrderHistoryEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *orderRepository) Delete(ctx context.Context, billNumber string) error {
	return GetDB(ctx, r.db).Where("bill_number = ?", billNumber).Delete(&model.Order{}).Error
}

// LastBillNumber returns the highest bill number issued under prefix,
// or "" when none exists. The sequence part is fixed-width, so the
// lexicographic maximum is the numeric maximum. Unscoped: soft-deleted
// orders keep their numbers reserved.
func (r *orderRepository) LastBillNumber(ctx context.Context, prefix string) (string, error) {
	var order model.Order
	err := GetDB(ctx, r.db).Unscoped().
		Where("bill_number LIKE ?", prefix+"%").
		Order("bill_number desc").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return order.BillNumber, nil
}

func (r *orderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).Where("customer_id = ?", customerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

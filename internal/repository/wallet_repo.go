package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletRepository is the ledger persistence collaborator. Entries are
// immutable once appended; the interface exposes no update or delete.
type WalletRepository interface {
	Append(ctx context.Context, txn *model.WalletTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error)
	BalanceOf(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Append(ctx context.Context, txn *model.WalletTransaction) error {
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *walletRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error) {
	var txns []model.WalletTransaction
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.WalletTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// BalanceOf recomputes the balance from the transaction log. The log is
// the single source of truth; no cached balance column exists.
func (r *walletRepository) BalanceOf(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Balance decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.WalletTransaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0) AS balance", model.TxTypeCredit).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Balance, nil
}

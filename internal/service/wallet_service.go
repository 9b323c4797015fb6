package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backend/internal/model"
	"backend/internal/payout"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type TransferRequest struct {
	FromUserID  string `json:"fromUserId" binding:"required"`
	ToUserID    string `json:"toUserId" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type AddFundsRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type WithdrawRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type TransactionResponse struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
	RelatedBillNumber string `json:"relatedBillNumber,omitempty"`
	CreatedAt         string `json:"createdAt"`
}

type WalletResponse struct {
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
}

// --- Interface ---

// WalletService owns the append-only money log. Balances are always
// recomputed from the log, never cached. Multi-entry sequences are
// serialized behind a single mutex so concurrent payouts cannot
// interleave their balance checks.
type WalletService interface {
	Balance(ctx context.Context, userID uuid.UUID) (*WalletResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error)

	// Credit appends a single credit entry.
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, relatedBill string) error
	// Debit appends a single debit entry after a balance check.
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, relatedBill string) error
	// PostPair appends a matched debit/credit pair atomically without a
	// balance check. Used for cash handover, where the debit mirrors
	// physical cash already collected.
	PostPair(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal, debitDesc, creditDesc, relatedBill string) error

	TransferFunds(ctx context.Context, req TransferRequest) error
	AddFunds(ctx context.Context, req AddFundsRequest) error
	WithdrawFunds(ctx context.Context, userID uuid.UUID, req WithdrawRequest) error

	// PayoutNet credits the worker with the gross amount minus the
	// referral deduction and returns (net, pool). It joins the ambient
	// transaction, so the caller can make the credit atomic with its own
	// writes and run CascadePool on the pool after commit.
	PayoutNet(ctx context.Context, workerID uuid.UUID, gross decimal.Decimal, description, relatedBill string) (decimal.Decimal, decimal.Decimal, error)
	// CascadePool distributes a withheld referral pool up the worker's
	// sponsorship chain.
	CascadePool(ctx context.Context, workerID uuid.UUID, pool decimal.Decimal, description string) error

	// ProcessWorkerPayout is PayoutNet followed by CascadePool. Returns
	// the net amount credited.
	ProcessWorkerPayout(ctx context.Context, workerID uuid.UUID, gross decimal.Decimal, description, relatedBill string) (decimal.Decimal, error)
}

type walletService struct {
	walletRepo repository.WalletRepository
	userRepo   repository.UserRepository
	settings   SettingsService
	referral   ReferralService
	txManager  repository.TransactionManager

	mu sync.Mutex
}

func NewWalletService(
	walletRepo repository.WalletRepository,
	userRepo repository.UserRepository,
	settings SettingsService,
	referral ReferralService,
	txManager repository.TransactionManager,
) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		userRepo:   userRepo,
		settings:   settings,
		referral:   referral,
		txManager:  txManager,
	}
}

// --- Implementation ---

func (s *walletService) Balance(ctx context.Context, userID uuid.UUID) (*WalletResponse, error) {
	balance, err := s.walletRepo.BalanceOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return &WalletResponse{UserID: userID.String(), Balance: balance.StringFixed(2)}, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error) {
	txns, total, err := s.walletRepo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, TransactionResponse{
			ID:                txn.ID.String(),
			Type:              txn.Type,
			Amount:            txn.Amount.StringFixed(2),
			Description:       txn.Description,
			RelatedBillNumber: txn.RelatedBillNumber,
			CreatedAt:         txn.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return responses, total, nil
}

func (s *walletService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, relatedBill string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit amount must be positive", ErrValidation)
	}
	return s.walletRepo.Append(ctx, &model.WalletTransaction{
		UserID:            userID,
		Type:              model.TxTypeCredit,
		Amount:            amount,
		Description:       description,
		RelatedBillNumber: relatedBill,
	})
}

func (s *walletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, relatedBill string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit amount must be positive", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.walletRepo.BalanceOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compute balance: %w", err)
	}
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, balance.StringFixed(2), amount.StringFixed(2))
	}

	return s.walletRepo.Append(ctx, &model.WalletTransaction{
		UserID:            userID,
		Type:              model.TxTypeDebit,
		Amount:            amount,
		Description:       description,
		RelatedBillNumber: relatedBill,
	})
}

func (s *walletService) PostPair(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal, debitDesc, creditDesc, relatedBill string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: pair amount must be positive", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.walletRepo.Append(txCtx, &model.WalletTransaction{
			UserID:            fromID,
			Type:              model.TxTypeDebit,
			Amount:            amount,
			Description:       debitDesc,
			RelatedBillNumber: relatedBill,
		}); err != nil {
			return err
		}
		return s.walletRepo.Append(txCtx, &model.WalletTransaction{
			UserID:            toID,
			Type:              model.TxTypeCredit,
			Amount:            amount,
			Description:       creditDesc,
			RelatedBillNumber: relatedBill,
		})
	})
}

func (s *walletService) TransferFunds(ctx context.Context, req TransferRequest) error {
	fromID, err := uuid.Parse(req.FromUserID)
	if err != nil {
		return fmt.Errorf("%w: invalid source user id", ErrValidation)
	}
	toID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		return fmt.Errorf("%w: invalid destination user id", ErrValidation)
	}
	if fromID == toID {
		return fmt.Errorf("%w: cannot transfer to the same account", ErrValidation)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	from, err := s.userRepo.GetByID(ctx, fromID)
	if err != nil {
		return wrapUserLookup(err, "source user")
	}
	to, err := s.userRepo.GetByID(ctx, toID)
	if err != nil {
		return wrapUserLookup(err, "destination user")
	}

	description := req.Description
	if description == "" {
		description = "Fund transfer"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.walletRepo.BalanceOf(ctx, fromID)
	if err != nil {
		return fmt.Errorf("failed to compute balance: %w", err)
	}
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, balance.StringFixed(2), amount.StringFixed(2))
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.walletRepo.Append(txCtx, &model.WalletTransaction{
			UserID:      from.ID,
			Type:        model.TxTypeDebit,
			Amount:      amount,
			Description: fmt.Sprintf("%s (to %s)", description, to.Name),
		}); err != nil {
			return err
		}
		return s.walletRepo.Append(txCtx, &model.WalletTransaction{
			UserID:      to.ID,
			Type:        model.TxTypeCredit,
			Amount:      amount,
			Description: fmt.Sprintf("%s (from %s)", description, from.Name),
		})
	})
}

func (s *walletService) AddFunds(ctx context.Context, req AddFundsRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return wrapUserLookup(err, "user")
	}

	description := req.Description
	if description == "" {
		description = "Funds added by admin"
	}
	return s.Credit(ctx, userID, amount, description, "")
}

func (s *walletService) WithdrawFunds(ctx context.Context, userID uuid.UUID, req WithdrawRequest) error {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}
	return s.Debit(ctx, userID, amount, "Withdrawal request", "")
}

func (s *walletService) PayoutNet(ctx context.Context, workerID uuid.UUID, gross decimal.Decimal, description, relatedBill string) (decimal.Decimal, decimal.Decimal, error) {
	if !gross.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: payout amount must be positive", ErrValidation)
	}

	table, err := s.settings.RateTable(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	fraction := payout.DeductionFraction(table)
	net, pool := payout.Net(gross, fraction)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.walletRepo.Append(ctx, &model.WalletTransaction{
		UserID:            workerID,
		Type:              model.TxTypeCredit,
		Amount:            net,
		Description:       description,
		RelatedBillNumber: relatedBill,
	}); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to credit payout: %w", err)
	}
	return net, pool, nil
}

func (s *walletService) CascadePool(ctx context.Context, workerID uuid.UUID, pool decimal.Decimal, description string) error {
	return s.referral.Distribute(ctx, workerID, pool, description)
}

func (s *walletService) ProcessWorkerPayout(ctx context.Context, workerID uuid.UUID, gross decimal.Decimal, description, relatedBill string) (decimal.Decimal, error) {
	net, pool, err := s.PayoutNet(ctx, workerID, gross, description, relatedBill)
	if err != nil {
		return decimal.Zero, err
	}
	// Cascade failures do not roll back the worker's credit: each
	// commission level is its own atomic append.
	if err := s.CascadePool(ctx, workerID, pool, description); err != nil {
		return net, fmt.Errorf("payout credited but cascade failed: %w", err)
	}
	return net, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return amount, nil
}

func wrapUserLookup(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

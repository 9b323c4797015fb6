package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dividendPoolPercent: the share of a declared daily profit that funds
// investor dividends.
var dividendPoolPercent = decimal.NewFromInt(1)

// --- DTOs ---

type CreateInvestmentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type DeclareProfitRequest struct {
	Profit string `json:"profit" binding:"required"`
}

type InvestmentResponse struct {
	ID                string `json:"id"`
	UserID            string `json:"userId"`
	PrincipalAmount   string `json:"principalAmount"`
	TotalTargetReturn string `json:"totalTargetReturn"`
	ReturnedSoFar     string `json:"returnedSoFar"`
	Status            string `json:"status"`
	StartDate         string `json:"startDate"`
	LastPayoutDate    string `json:"lastPayoutDate,omitempty"`
}

type DividendRunResponse struct {
	Pool        string `json:"pool"`
	Distributed string `json:"distributed"`
	Investments int    `json:"investments"`
	Completed   int    `json:"completed"`
}

// --- Interface ---

// InvestmentService manages principal contributions and the daily
// profit-share dividend run. Every plan's lifetime return is capped at
// three times its principal.
type InvestmentService interface {
	CreateInvestment(ctx context.Context, actor Actor, req CreateInvestmentRequest) (*InvestmentResponse, error)
	ListMyInvestments(ctx context.Context, userID uuid.UUID) ([]InvestmentResponse, error)
	ListInvestments(ctx context.Context, status string, page, limit int) ([]InvestmentResponse, int64, error)
	DistributeDailyDividends(ctx context.Context, req DeclareProfitRequest) (*DividendRunResponse, error)
}

type investmentService struct {
	investmentRepo repository.InvestmentRepository
	wallet         WalletService
	txManager      repository.TransactionManager
}

func NewInvestmentService(
	investmentRepo repository.InvestmentRepository,
	wallet WalletService,
	txManager repository.TransactionManager,
) InvestmentService {
	return &investmentService{
		investmentRepo: investmentRepo,
		wallet:         wallet,
		txManager:      txManager,
	}
}

// --- Implementation ---

func (s *investmentService) CreateInvestment(ctx context.Context, actor Actor, req CreateInvestmentRequest) (*InvestmentResponse, error) {
	principal, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	investment := model.Investment{
		UserID:            actor.ID,
		PrincipalAmount:   principal,
		TotalTargetReturn: principal.Mul(decimal.NewFromInt(model.ReturnMultiple)),
		ReturnedSoFar:     decimal.Zero,
		Status:            model.InvestmentActive,
		StartDate:         time.Now(),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.wallet.Debit(txCtx, actor.ID, principal,
			"New investment plan started", ""); err != nil {
			return err
		}
		return s.investmentRepo.Create(txCtx, &investment)
	})
	if err != nil {
		return nil, err
	}

	resp := toInvestmentResponse(&investment)
	return &resp, nil
}

func (s *investmentService) ListMyInvestments(ctx context.Context, userID uuid.UUID) ([]InvestmentResponse, error) {
	investments, err := s.investmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]InvestmentResponse, 0, len(investments))
	for i := range investments {
		responses = append(responses, toInvestmentResponse(&investments[i]))
	}
	return responses, nil
}

func (s *investmentService) ListInvestments(ctx context.Context, status string, page, limit int) ([]InvestmentResponse, int64, error) {
	investments, total, err := s.investmentRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]InvestmentResponse, 0, len(investments))
	for i := range investments {
		responses = append(responses, toInvestmentResponse(&investments[i]))
	}
	return responses, total, nil
}

// DistributeDailyDividends splits one percent of the declared profit
// across active plans in proportion to principal. A plan's share is
// capped at whatever remains of its three-times target; hitting the
// target flips the plan to COMPLETED and it earns nothing further.
func (s *investmentService) DistributeDailyDividends(ctx context.Context, req DeclareProfitRequest) (*DividendRunResponse, error) {
	profit, err := decimal.NewFromString(req.Profit)
	if err != nil || profit.IsNegative() {
		return nil, fmt.Errorf("%w: invalid profit amount", ErrValidation)
	}

	active, err := s.investmentRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active investments: %w", err)
	}

	pool := profit.Mul(dividendPoolPercent).Div(decimal.NewFromInt(100))
	result := &DividendRunResponse{
		Pool:        pool.StringFixed(2),
		Distributed: decimal.Zero.StringFixed(2),
		Investments: len(active),
	}
	if len(active) == 0 || !pool.IsPositive() {
		return result, nil
	}

	totalPrincipal := decimal.Zero
	for i := range active {
		totalPrincipal = totalPrincipal.Add(active[i].PrincipalAmount)
	}
	if !totalPrincipal.IsPositive() {
		return result, nil
	}

	now := time.Now()
	distributed := decimal.Zero
	completed := 0
	for i := range active {
		investment := &active[i]

		share := pool.Mul(investment.PrincipalAmount).Div(totalPrincipal).Round(2)
		remaining := investment.TotalTargetReturn.Sub(investment.ReturnedSoFar)
		if share.GreaterThan(remaining) {
			share = remaining
		}
		if !share.IsPositive() {
			continue
		}

		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.wallet.Credit(txCtx, investment.UserID, share,
				"Daily profit share dividend", ""); err != nil {
				return err
			}
			investment.ReturnedSoFar = investment.ReturnedSoFar.Add(share)
			investment.LastPayoutDate = &now
			if investment.ReturnedSoFar.Equal(investment.TotalTargetReturn) {
				investment.Status = model.InvestmentCompleted
			}
			return s.investmentRepo.Update(txCtx, investment)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to pay dividend on investment %s: %w", investment.ID, err)
		}

		distributed = distributed.Add(share)
		if investment.Status == model.InvestmentCompleted {
			completed++
		}
	}

	result.Distributed = distributed.StringFixed(2)
	result.Completed = completed
	return result, nil
}

func toInvestmentResponse(investment *model.Investment) InvestmentResponse {
	resp := InvestmentResponse{
		ID:                investment.ID.String(),
		UserID:            investment.UserID.String(),
		PrincipalAmount:   investment.PrincipalAmount.StringFixed(2),
		TotalTargetReturn: investment.TotalTargetReturn.StringFixed(2),
		ReturnedSoFar:     investment.ReturnedSoFar.StringFixed(2),
		Status:            investment.Status,
		StartDate:         investment.StartDate.Format("2006-01-02"),
	}
	if investment.LastPayoutDate != nil {
		resp.LastPayoutDate = investment.LastPayoutDate.Format("2006-01-02")
	}
	return resp
}

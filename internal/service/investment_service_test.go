package service_test

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateInvestmentDebitsPrincipal(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	investor := e.createUser(t, "Investor", model.RoleInvestor, nil)
	require.NoError(t, e.wallet.Credit(ctx, investor.ID, decimal.NewFromInt(1000), "Opening credit", ""))

	resp, err := e.investments.CreateInvestment(ctx, actorOf(investor), service.CreateInvestmentRequest{Amount: "600"})
	require.NoError(t, err)
	require.Equal(t, "600.00", resp.PrincipalAmount)
	require.Equal(t, "1800.00", resp.TotalTargetReturn)
	require.Equal(t, "0.00", resp.ReturnedSoFar)
	require.Equal(t, model.InvestmentActive, resp.Status)
	requireAmount(t, "400.00", e.balance(t, investor.ID))

	// An uncovered principal creates neither a debit nor a plan.
	_, err = e.investments.CreateInvestment(ctx, actorOf(investor), service.CreateInvestmentRequest{Amount: "600"})
	require.ErrorIs(t, err, service.ErrInsufficientFunds)
	requireAmount(t, "400.00", e.balance(t, investor.ID))

	mine, err := e.investments.ListMyInvestments(ctx, investor.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestDividendsSplitProportionally(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	small := e.createUser(t, "Small Investor", model.RoleInvestor, nil)
	large := e.createUser(t, "Large Investor", model.RoleInvestor, nil)

	seedPlan(t, e, small.ID, "1000", "0")
	seedPlan(t, e, large.ID, "3000", "0")

	// Pool is 1 percent of 40000 = 400, split 1:3 by principal.
	run, err := e.investments.DistributeDailyDividends(ctx, service.DeclareProfitRequest{Profit: "40000"})
	require.NoError(t, err)
	require.Equal(t, "400.00", run.Pool)
	require.Equal(t, "400.00", run.Distributed)
	require.Equal(t, 2, run.Investments)
	require.Equal(t, 0, run.Completed)

	requireAmount(t, "100.00", e.balance(t, small.ID))
	requireAmount(t, "300.00", e.balance(t, large.ID))

	plans, err := e.investments.ListMyInvestments(ctx, small.ID)
	require.NoError(t, err)
	require.Equal(t, "100.00", plans[0].ReturnedSoFar)
	require.NotEmpty(t, plans[0].LastPayoutDate)
}

func TestDividendCapsAtTripleAndCompletes(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	investor := e.createUser(t, "Investor", model.RoleInvestor, nil)

	// 0.50 short of the 300 lifetime cap on a 100 principal.
	seedPlan(t, e, investor.ID, "100", "299.50")

	run, err := e.investments.DistributeDailyDividends(ctx, service.DeclareProfitRequest{Profit: "100000"})
	require.NoError(t, err)
	require.Equal(t, "0.50", run.Distributed)
	require.Equal(t, 1, run.Completed)
	requireAmount(t, "0.50", e.balance(t, investor.ID))

	plans, err := e.investments.ListMyInvestments(ctx, investor.ID)
	require.NoError(t, err)
	require.Equal(t, model.InvestmentCompleted, plans[0].Status)
	require.Equal(t, "300.00", plans[0].ReturnedSoFar)

	// Completed plans earn nothing on later runs.
	run, err = e.investments.DistributeDailyDividends(ctx, service.DeclareProfitRequest{Profit: "100000"})
	require.NoError(t, err)
	require.Equal(t, 0, run.Investments)
	requireAmount(t, "0.50", e.balance(t, investor.ID))
}

func TestDividendRunWithNoActivePlans(t *testing.T) {
	e := newTestEnv(t)

	run, err := e.investments.DistributeDailyDividends(context.Background(), service.DeclareProfitRequest{Profit: "5000"})
	require.NoError(t, err)
	require.Equal(t, "50.00", run.Pool)
	require.Equal(t, "0.00", run.Distributed)
	require.Equal(t, 0, run.Investments)

	_, err = e.investments.DistributeDailyDividends(context.Background(), service.DeclareProfitRequest{Profit: "-10"})
	require.ErrorIs(t, err, service.ErrValidation)
}

// seedPlan inserts an active plan directly, skipping the wallet debit.
func seedPlan(t *testing.T, e *testEnv, userID uuid.UUID, principal, returned string) {
	t.Helper()
	p := decimal.RequireFromString(principal)
	plan := model.Investment{
		UserID:            userID,
		PrincipalAmount:   p,
		TotalTargetReturn: p.Mul(decimal.NewFromInt(model.ReturnMultiple)),
		ReturnedSoFar:     decimal.RequireFromString(returned),
		Status:            model.InvestmentActive,
		StartDate:         time.Now(),
	}
	require.NoError(t, e.db.Create(&plan).Error)
}

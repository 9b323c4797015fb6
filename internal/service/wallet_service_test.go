package service_test

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreditDebitAndBalance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "Worker", model.RoleStitching, nil)

	require.NoError(t, e.wallet.Credit(ctx, user.ID, decimal.NewFromInt(500), "Opening credit", ""))
	require.NoError(t, e.wallet.Debit(ctx, user.ID, decimal.NewFromInt(120), "Withdrawal", ""))
	requireAmount(t, "380.00", e.balance(t, user.ID))

	resp, err := e.wallet.Balance(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "380.00", resp.Balance)

	txns, total, err := e.wallet.ListTransactions(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, txns, 2)
}

func TestDebitRejectsOverdraft(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.createUser(t, "Worker", model.RoleStitching, nil)

	require.NoError(t, e.wallet.Credit(ctx, user.ID, decimal.NewFromInt(50), "Opening credit", ""))

	err := e.wallet.Debit(ctx, user.ID, decimal.NewFromInt(100), "Withdrawal", "")
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	// The failed debit left no ledger entry behind.
	requireAmount(t, "50.00", e.balance(t, user.ID))
}

func TestTransferFunds(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	from := e.createUser(t, "Sender", model.RoleShowroom, nil)
	to := e.createUser(t, "Receiver", model.RoleStitching, nil)

	require.NoError(t, e.wallet.Credit(ctx, from.ID, decimal.NewFromInt(100), "Opening credit", ""))

	require.NoError(t, e.wallet.TransferFunds(ctx, service.TransferRequest{
		FromUserID: from.ID.String(),
		ToUserID:   to.ID.String(),
		Amount:     "40",
	}))
	requireAmount(t, "60.00", e.balance(t, from.ID))
	requireAmount(t, "40.00", e.balance(t, to.ID))

	err := e.wallet.TransferFunds(ctx, service.TransferRequest{
		FromUserID: from.ID.String(),
		ToUserID:   from.ID.String(),
		Amount:     "10",
	})
	require.ErrorIs(t, err, service.ErrValidation)

	err = e.wallet.TransferFunds(ctx, service.TransferRequest{
		FromUserID: from.ID.String(),
		ToUserID:   to.ID.String(),
		Amount:     "1000",
	})
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	err = e.wallet.TransferFunds(ctx, service.TransferRequest{
		FromUserID: from.ID.String(),
		ToUserID:   uuid.NewString(),
		Amount:     "10",
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestWorkerPayoutCascadesUpline(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// worker -> level1 -> level2
	level2 := e.createUser(t, "Grand Sponsor", model.RoleManager, nil)
	level1 := e.createUser(t, "Sponsor", model.RoleShowroom, &level2.ID)
	worker := e.createUser(t, "Worker", model.RoleStitching, &level1.ID)

	net, err := e.wallet.ProcessWorkerPayout(ctx, worker.ID, decimal.NewFromInt(1000), "Stitching work", "ORD-X")
	require.NoError(t, err)
	requireAmount(t, "900.00", net)

	// Pool is 100; level percents are 5 and 3.
	requireAmount(t, "900.00", e.balance(t, worker.ID))
	requireAmount(t, "5.00", e.balance(t, level1.ID))
	requireAmount(t, "3.00", e.balance(t, level2.ID))

	// Each commission is logged and rolled into the lifetime counter.
	income, total, err := e.referrals.IncomeLog(ctx, level1.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, 1, income[0].Level)
	require.Equal(t, "5.00", income[0].Amount)
	require.Equal(t, worker.Name, income[0].FromUserName)

	reloaded, err := e.userRepo.GetByID(ctx, level2.ID)
	require.NoError(t, err)
	requireAmount(t, "3.00", reloaded.TotalReferralEarnings)
}

func TestCascadeStopsOnSponsorCycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.createUser(t, "Alpha", model.RoleStitching, nil)
	b := e.createUser(t, "Beta", model.RoleShowroom, &a.ID)
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", a.ID).Update("referred_by", b.ID).Error)

	net, err := e.wallet.ProcessWorkerPayout(ctx, a.ID, decimal.NewFromInt(100), "Stitching work", "")
	require.NoError(t, err)
	requireAmount(t, "90.00", net)

	// b earns the level-1 commission; the walk stops before cycling back
	// to a, who keeps only the net payout.
	requireAmount(t, "0.50", e.balance(t, b.ID))
	requireAmount(t, "90.00", e.balance(t, a.ID))
}

func TestCascadeDepthCappedAtSix(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// Eight-deep chain: ancestors[0] is level 1, ancestors[6] is level 7.
	var sponsorID *uuid.UUID
	ancestors := make([]*model.User, 7)
	for i := 6; i >= 0; i-- {
		ancestors[i] = e.createUser(t, "Ancestor", model.RoleManager, sponsorID)
		sponsorID = &ancestors[i].ID
	}
	worker := e.createUser(t, "Worker", model.RoleStitching, sponsorID)

	_, err := e.wallet.ProcessWorkerPayout(ctx, worker.ID, decimal.NewFromInt(1000), "Stitching work", "")
	require.NoError(t, err)

	// Pool 100 at 5/3/2/1/0.5/0.5 percent.
	for i, want := range []string{"5.00", "3.00", "2.00", "1.00", "0.50", "0.50"} {
		requireAmount(t, want, e.balance(t, ancestors[i].ID))
	}
	// The seventh ancestor is beyond the cascade and earns nothing.
	require.True(t, e.balance(t, ancestors[6].ID).IsZero())
}

func TestPayoutUsesCurrentDeductionPercent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.createUser(t, "Worker", model.RoleStitching, nil)

	require.NoError(t, e.settings.UpdateRates(ctx, service.UpdateRatesRequest{
		Rates: []service.RateEntry{{Key: "REFERRAL_DEDUCTION_PERCENT", Amount: "20"}},
	}))

	net, err := e.wallet.ProcessWorkerPayout(ctx, worker.ID, decimal.NewFromInt(100), "Stitching work", "")
	require.NoError(t, err)
	requireAmount(t, "80.00", net)
	requireAmount(t, "80.00", e.balance(t, worker.ID))
}

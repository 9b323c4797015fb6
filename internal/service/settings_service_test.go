package service_test

import (
	"context"
	"testing"

	"backend/internal/payout"
	"backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSeededDefaultsLoad(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	table, err := e.settings.RateTable(ctx)
	require.NoError(t, err)
	require.Len(t, table, len(payout.DefaultRates()))
	require.True(t, decimal.NewFromInt(10).Equal(table[payout.KeyReferralDeduction]))

	levels, err := e.settings.ReferralLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 6)
	require.True(t, decimal.NewFromInt(5).Equal(levels[1]))
	require.True(t, decimal.NewFromFloat(0.5).Equal(levels[6]))
}

func TestUpdateRates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, e.settings.UpdateRates(ctx, service.UpdateRatesRequest{
		Rates: []service.RateEntry{
			{Key: "STITCHING_SHIRT", Amount: "140"},
			{Key: "CUTTING_JODHPURI", Amount: "95"}, // new key
		},
	}))

	table, err := e.settings.RateTable(ctx)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(140).Equal(table["STITCHING_SHIRT"]))
	require.True(t, decimal.NewFromInt(95).Equal(table["CUTTING_JODHPURI"]))

	err = e.settings.UpdateRates(ctx, service.UpdateRatesRequest{
		Rates: []service.RateEntry{{Key: "STITCHING_SHIRT", Amount: "-5"}},
	})
	require.ErrorIs(t, err, service.ErrValidation)

	err = e.settings.UpdateRates(ctx, service.UpdateRatesRequest{
		Rates: []service.RateEntry{{Key: "STITCHING_SHIRT", Amount: "lots"}},
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestUpdateReferralLevels(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, e.settings.UpdateReferralLevels(ctx, service.UpdateReferralLevelsRequest{
		Levels: []service.LevelEntry{{Level: 1, Percent: "7.5"}},
	}))
	levels, err := e.settings.ReferralLevels(ctx)
	require.NoError(t, err)
	require.True(t, decimal.NewFromFloat(7.5).Equal(levels[1]))

	err = e.settings.UpdateReferralLevels(ctx, service.UpdateReferralLevelsRequest{
		Levels: []service.LevelEntry{{Level: 2, Percent: "120"}},
	})
	require.ErrorIs(t, err, service.ErrValidation)

	err = e.settings.UpdateReferralLevels(ctx, service.UpdateReferralLevelsRequest{
		Levels: []service.LevelEntry{{Level: 2, Percent: "-1"}},
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

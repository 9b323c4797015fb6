package payout_test

import (
	"testing"

	"backend/internal/model"
	"backend/internal/payout"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRateWithSeededTable(t *testing.T) {
	table := payout.DefaultRates()

	tests := []struct {
		name    string
		role    string
		garment string
		isNew   bool
		want    string
	}{
		{"measurement new shirt", model.RoleMeasurement, model.GarmentShirt, true, "40"},
		{"measurement returning shirt", model.RoleMeasurement, model.GarmentShirt, false, "25"},
		{"kurta buckets as shirt", model.RoleMeasurement, model.GarmentKurta, false, "25"},
		{"trousers bucket as pant", model.RoleMeasurement, model.GarmentTrousers, true, "40"},
		{"sherwani buckets as coat", model.RoleMeasurement, model.GarmentSherwani, true, "60"},
		{"safari has its own bucket", model.RoleMeasurement, model.GarmentSafari, false, "35"},
		{"cutting pant", model.RoleCutting, model.GarmentPant, false, "40"},
		{"cutting coat", model.RoleCutting, model.GarmentCoat, false, "90"},
		{"stitching dept shirt", model.RoleStitching, model.GarmentShirt, false, "120"},
		{"sherwani maker", model.RoleSherwaniMaker, model.GarmentSherwani, false, "450"},
		{"kaj button shirt", model.RoleKajButton, model.GarmentShirt, false, "15"},
		{"finishing is flat", model.RoleFinishing, model.GarmentCoat, false, "10"},
		{"delivery return bonus", model.RoleDelivery, model.GarmentShirt, false, "5"},
		{"non-production role earns nothing", model.RoleShowroom, model.GarmentShirt, false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := payout.Rate(tt.role, tt.garment, tt.isNew, table)
			assert.True(t, amt(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestRateFallbacks(t *testing.T) {
	// Missing table entries resolve to the per-role fallback, never zero.
	empty := payout.RateTable{}
	assert.True(t, amt("25").Equal(payout.Rate(model.RoleMeasurement, model.GarmentShirt, false, empty)))
	assert.True(t, amt("50").Equal(payout.Rate(model.RoleCutting, model.GarmentShirt, false, empty)))
	assert.True(t, amt("150").Equal(payout.Rate(model.RoleStitching, model.GarmentShirt, false, empty)))
	assert.True(t, amt("10").Equal(payout.Rate(model.RoleKajButton, model.GarmentShirt, false, empty)))
	assert.True(t, amt("10").Equal(payout.Rate(model.RoleFinishing, model.GarmentShirt, false, empty)))
	assert.True(t, amt("5").Equal(payout.Rate(model.RoleDelivery, model.GarmentShirt, false, empty)))

	// A nil table behaves the same as an empty one.
	assert.True(t, amt("25").Equal(payout.Rate(model.RoleMeasurement, model.GarmentShirt, false, nil)))

	// Unknown garment falls back to the measurement default too.
	assert.True(t, amt("25").Equal(payout.Rate(model.RoleMeasurement, "Waistcoat", true, payout.DefaultRates())))
}

func TestMaterialRate(t *testing.T) {
	table := payout.DefaultRates()
	assert.True(t, amt("2").Equal(payout.MaterialRate(payout.KeyMaterialEntry, table)))
	assert.True(t, amt("3").Equal(payout.MaterialRate(payout.KeyMaterialIssue, table)))
	assert.True(t, amt("2").Equal(payout.MaterialRate(payout.KeyMaterialEntry, nil)))
	assert.True(t, payout.MaterialRate("STOCK_AUDIT", table).IsZero())
}

func TestDeductionFractionAndNet(t *testing.T) {
	table := payout.DefaultRates()
	fraction := payout.DeductionFraction(table)
	require.True(t, amt("0.1").Equal(fraction), "default deduction is 10 percent, got %s", fraction)

	net, pool := payout.Net(amt("100"), fraction)
	assert.True(t, amt("90").Equal(net), "net %s", net)
	assert.True(t, amt("10").Equal(pool), "pool %s", pool)

	// Net and pool always recompose the gross exactly.
	gross := amt("123.45")
	net, pool = payout.Net(gross, fraction)
	assert.True(t, gross.Equal(net.Add(pool)))

	// Admin override of the percent changes the split.
	table[payout.KeyReferralDeduction] = amt("20")
	net, pool = payout.Net(amt("100"), payout.DeductionFraction(table))
	assert.True(t, amt("80").Equal(net))
	assert.True(t, amt("20").Equal(pool))
}

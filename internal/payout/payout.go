// Package payout computes piece rates for completed production work.
// Selection is entirely table-driven: every rate resolves through the
// admin-editable rate table, with a documented per-role fallback when a
// key is absent. No rate is ever hard-coded at a call site.
package payout

import (
	"strings"

	"backend/internal/model"
	"backend/internal/workflow"

	"github.com/shopspring/decimal"
)

// RateTable is the in-memory form of the admin-mutable rate
// configuration: rate key -> flat amount in rupees.
type RateTable map[string]decimal.Decimal

// Rate keys not derived from role x garment.
const (
	KeyFinishing         = "FINISHING"
	KeyReturnToShowroom  = "RETURN_TO_SHOWROOM"
	KeyMaterialEntry     = "MATERIAL_ENTRY"
	KeyMaterialIssue     = "MATERIAL_ISSUE"
	KeyReferralDeduction = "REFERRAL_DEDUCTION_PERCENT"
)

// Fallback rates per role, applied when the table has no entry for the
// resolved key.
var (
	fallbackMeasurement = decimal.NewFromInt(25)
	fallbackCutting     = decimal.NewFromInt(50)
	fallbackStitching   = decimal.NewFromInt(150)
	fallbackKajButton   = decimal.NewFromInt(10)
	fallbackFinishing   = decimal.NewFromInt(10)
	fallbackReturn      = decimal.NewFromInt(5)
	fallbackMaterial    = decimal.NewFromInt(2)

	defaultDeductionPercent = decimal.NewFromInt(10)
)

// Rate resolves the piece rate for a role completing work on a garment.
// Measurement rates additionally depend on whether the customer is new
// (onboarding a new customer pays more).
func Rate(role, garment string, isNewCustomer bool, table RateTable) decimal.Decimal {
	switch {
	case role == model.RoleMeasurement:
		return lookup(table, measurementKey(garment, isNewCustomer), fallbackMeasurement)
	case role == model.RoleCutting:
		return lookup(table, "CUTTING_"+garmentKey(garment), fallbackCutting)
	case workflow.IsStitchingRole(role):
		return lookup(table, "STITCHING_"+garmentKey(garment), fallbackStitching)
	case role == model.RoleKajButton:
		return lookup(table, "KAJ_BUTTON_"+garmentKey(garment), fallbackKajButton)
	case role == model.RoleFinishing:
		return lookup(table, KeyFinishing, fallbackFinishing)
	case role == model.RoleDelivery:
		return lookup(table, KeyReturnToShowroom, fallbackReturn)
	default:
		return decimal.Zero
	}
}

// MaterialRate returns the fixed incentive for a material-handling
// action (stock entry or material issue), independent of garment type.
func MaterialRate(action string, table RateTable) decimal.Decimal {
	switch action {
	case KeyMaterialEntry, KeyMaterialIssue:
		return lookup(table, action, fallbackMaterial)
	default:
		return decimal.Zero
	}
}

// DeductionFraction returns the referral deduction as a fraction of the
// gross payout (e.g. 0.10 for the default 10 percent).
func DeductionFraction(table RateTable) decimal.Decimal {
	pct := lookup(table, KeyReferralDeduction, defaultDeductionPercent)
	return pct.Div(decimal.NewFromInt(100))
}

// Net splits a gross payout into the worker's net amount and the
// referral pool funded by the deduction.
func Net(gross, deductionFraction decimal.Decimal) (net, pool decimal.Decimal) {
	pool = gross.Mul(deductionFraction)
	return gross.Sub(pool), pool
}

func lookup(table RateTable, key string, fallback decimal.Decimal) decimal.Decimal {
	if table != nil {
		if amount, ok := table[key]; ok {
			return amount
		}
	}
	return fallback
}

// measurementKey buckets garments into the four measurement categories
// and appends the new/returning suffix.
func measurementKey(garment string, isNew bool) string {
	var category string
	switch garment {
	case model.GarmentShirt, model.GarmentKurta:
		category = "SHIRT"
	case model.GarmentPant, model.GarmentPyjama, model.GarmentTrousers:
		category = "PANT"
	case model.GarmentCoat, model.GarmentSherwani, model.GarmentJodhpuri:
		category = "COAT"
	case model.GarmentSafari:
		category = "SAFARI"
	default:
		return "" // falls back to the measurement default
	}
	if isNew {
		return "MEASUREMENT_" + category + "_NEW"
	}
	return "MEASUREMENT_" + category + "_OLD"
}

func garmentKey(garment string) string {
	return strings.ToUpper(strings.ReplaceAll(garment, " ", "_"))
}

// DefaultRates is the rate table seeded on first run; admins edit it
// from the settings screen afterwards.
func DefaultRates() RateTable {
	return RateTable{
		"MEASUREMENT_SHIRT_NEW":  decimal.NewFromInt(40),
		"MEASUREMENT_SHIRT_OLD":  decimal.NewFromInt(25),
		"MEASUREMENT_PANT_NEW":   decimal.NewFromInt(40),
		"MEASUREMENT_PANT_OLD":   decimal.NewFromInt(25),
		"MEASUREMENT_COAT_NEW":   decimal.NewFromInt(60),
		"MEASUREMENT_COAT_OLD":   decimal.NewFromInt(40),
		"MEASUREMENT_SAFARI_NEW": decimal.NewFromInt(50),
		"MEASUREMENT_SAFARI_OLD": decimal.NewFromInt(35),

		"CUTTING_SHIRT":    decimal.NewFromInt(30),
		"CUTTING_KURTA":    decimal.NewFromInt(30),
		"CUTTING_PANT":     decimal.NewFromInt(40),
		"CUTTING_PYJAMA":   decimal.NewFromInt(25),
		"CUTTING_TROUSERS": decimal.NewFromInt(40),
		"CUTTING_COAT":     decimal.NewFromInt(90),
		"CUTTING_SAFARI":   decimal.NewFromInt(80),
		"CUTTING_SHERWANI": decimal.NewFromInt(90),

		"STITCHING_SHIRT":    decimal.NewFromInt(120),
		"STITCHING_KURTA":    decimal.NewFromInt(120),
		"STITCHING_PANT":     decimal.NewFromInt(150),
		"STITCHING_PYJAMA":   decimal.NewFromInt(100),
		"STITCHING_TROUSERS": decimal.NewFromInt(150),
		"STITCHING_COAT":     decimal.NewFromInt(400),
		"STITCHING_SAFARI":   decimal.NewFromInt(350),
		"STITCHING_SHERWANI": decimal.NewFromInt(450),

		"KAJ_BUTTON_SHIRT": decimal.NewFromInt(15),
		"KAJ_BUTTON_COAT":  decimal.NewFromInt(25),

		KeyFinishing:        decimal.NewFromInt(10),
		KeyReturnToShowroom: decimal.NewFromInt(5),
		KeyMaterialEntry:    decimal.NewFromInt(2),
		KeyMaterialIssue:    decimal.NewFromInt(3),

		KeyReferralDeduction: defaultDeductionPercent,
	}
}

// DefaultReferralLevels are the level percents seeded on first run.
func DefaultReferralLevels() map[int]decimal.Decimal {
	return map[int]decimal.Decimal{
		1: decimal.NewFromInt(5),
		2: decimal.NewFromInt(3),
		3: decimal.NewFromInt(2),
		4: decimal.NewFromInt(1),
		5: decimal.NewFromFloat(0.5),
		6: decimal.NewFromFloat(0.5),
	}
}

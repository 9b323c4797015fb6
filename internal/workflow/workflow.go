// Package workflow holds the production state machine as data: the
// stage ordering, the garment routing table, and the role capability
// table. Everything here is pure: services consult these tables and
// perform the actual transitions.
package workflow

import "backend/internal/model"

// statusRank fixes the strict linear order of production stages.
// An order's rank never decreases except through an admin force-set.
var statusRank = map[string]int{
	model.StatusPending:     0,
	model.StatusMeasurement: 1,
	model.StatusCutting:     2,
	model.StatusStitching:   3,
	model.StatusKajButton:   4,
	model.StatusFinishing:   5,
	model.StatusReady:       6,
	model.StatusDelivered:   7,
}

// Rank returns the position of a status in the stage order, or -1 for
// an unknown status.
func Rank(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return -1
}

// ValidStatus reports whether status is one of the production stages.
func ValidStatus(status string) bool {
	_, ok := statusRank[status]
	return ok
}

// lowerBody garments route STITCHING -> FINISHING directly, skipping
// KAJ_BUTTON (no buttonhole work on lower-body pieces).
var lowerBody = map[string]bool{
	model.GarmentPant:     true,
	model.GarmentPyjama:   true,
	model.GarmentTrousers: true,
}

// IsLowerBody reports whether the garment skips the KAJ_BUTTON stage.
func IsLowerBody(garment string) bool {
	return lowerBody[garment]
}

// Next returns the stage that follows current for the given garment
// type, and false once the workflow is terminal.
func Next(current, garment string) (string, bool) {
	switch current {
	case model.StatusPending:
		return model.StatusMeasurement, true
	case model.StatusMeasurement:
		return model.StatusCutting, true
	case model.StatusCutting:
		return model.StatusStitching, true
	case model.StatusStitching:
		if IsLowerBody(garment) {
			return model.StatusFinishing, true
		}
		return model.StatusKajButton, true
	case model.StatusKajButton:
		return model.StatusFinishing, true
	case model.StatusFinishing:
		return model.StatusReady, true
	case model.StatusReady:
		return model.StatusDelivered, true
	default:
		return "", false
	}
}

// stitchingRoles: the general stitching department plus the per-garment
// maker roles, all of which may complete the STITCHING stage.
var stitchingRoles = map[string]bool{
	model.RoleStitching:     true,
	model.RolePantMaker:     true,
	model.RoleShirtMaker:    true,
	model.RoleCoatMaker:     true,
	model.RoleSafariMaker:   true,
	model.RoleSherwaniMaker: true,
}

// IsStitchingRole reports whether role belongs to the stitching
// department (including per-garment makers).
func IsStitchingRole(role string) bool {
	return stitchingRoles[role]
}

// Allowed reports whether an account with the given role may move an
// order OUT of the given status. Admins bypass this check entirely via
// the force-set path, which is audited separately.
func Allowed(role, status string) bool {
	switch status {
	case model.StatusPending, model.StatusMeasurement:
		return role == model.RoleMeasurement
	case model.StatusCutting:
		return role == model.RoleCutting
	case model.StatusStitching:
		return IsStitchingRole(role)
	case model.StatusKajButton:
		return role == model.RoleKajButton
	case model.StatusFinishing:
		return role == model.RoleFinishing
	case model.StatusReady:
		return role == model.RoleDelivery
	default:
		return false
	}
}

// SubGarment is one physical piece a composite booking item splits
// into. Suffix becomes part of the sub-order's bill number.
type SubGarment struct {
	Type   string
	Suffix string
}

// composites maps a composite catalogue item to its physical
// sub-garments. Price and fabric are split evenly across them.
var composites = map[string][]SubGarment{
	model.CompositeSuit: {
		{Type: model.GarmentCoat, Suffix: "COAT"},
		{Type: model.GarmentPant, Suffix: "PANT"},
	},
	model.CompositeSafariSuit: {
		{Type: model.GarmentSafari, Suffix: "SAFARI"},
		{Type: model.GarmentPant, Suffix: "PANT"},
	},
	model.CompositeKurtaPyjama: {
		{Type: model.GarmentKurta, Suffix: "KURTA"},
		{Type: model.GarmentPyjama, Suffix: "PYJAMA"},
	},
}

// Split resolves a booked item type into the physical sub-garments it
// produces. Non-composite types map to themselves with their own name
// as suffix.
func Split(itemType string) []SubGarment {
	if subs, ok := composites[itemType]; ok {
		return subs
	}
	return []SubGarment{{Type: itemType, Suffix: subSuffix(itemType)}}
}

func subSuffix(itemType string) string {
	out := make([]byte, 0, len(itemType))
	for i := 0; i < len(itemType); i++ {
		c := itemType[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c == ' ' {
			c = '-'
		}
		out = append(out, c)
	}
	return string(out)
}

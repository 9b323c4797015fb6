package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role enum constants. Every account carries exactly one role; the
// production workflow only lets an account act on the department its
// role belongs to (see internal/workflow).
const (
	RoleAdmin         = "ADMIN"
	RoleShowroom      = "SHOWROOM"
	RoleManager       = "MANAGER"
	RoleBookingMaster = "BOOKING_MASTER"
	RoleMeasurement   = "MEASUREMENT"
	RoleCutting       = "CUTTING"
	RoleStitching     = "STITCHING"
	RolePantMaker     = "PANT_MAKER"
	RoleShirtMaker    = "SHIRT_MAKER"
	RoleCoatMaker     = "COAT_MAKER"
	RoleSafariMaker   = "SAFARI_MAKER"
	RoleSherwaniMaker = "SHERWANI_MAKER"
	RoleKajButton     = "KAJ_BUTTON"
	RoleFinishing     = "FINISHING"
	RoleDelivery      = "DELIVERY"
	RoleMaterial      = "MATERIAL"
	RoleInvestor      = "INVESTOR"
)

// ManagerRank enum constants
const (
	RankAssociate = "ASSOCIATE"
	RankSenior    = "SENIOR"
	RankDirector  = "DIRECTOR"
)

// AllRoles is the closed set of valid account roles.
var AllRoles = []string{
	RoleAdmin, RoleShowroom, RoleManager, RoleBookingMaster,
	RoleMeasurement, RoleCutting, RoleStitching,
	RolePantMaker, RoleShirtMaker, RoleCoatMaker, RoleSafariMaker, RoleSherwaniMaker,
	RoleKajButton, RoleFinishing, RoleDelivery, RoleMaterial, RoleInvestor,
}

// ValidRole reports whether role belongs to the fixed enumeration.
func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a staff account (or investor). ReferredBy points at the
// upline account and forms the referral tree walked by the cascade engine.
// Accounts are soft-deleted so ledger entries stay resolvable.
type User struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name                  string          `gorm:"type:varchar(255);not null" json:"name"`
	Email                 string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Mobile                string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"mobile"`
	Password              string          `gorm:"type:varchar(255);not null" json:"-"`
	Role                  string          `gorm:"type:varchar(30);not null;index" json:"role"`
	ManagerRank           *string         `gorm:"type:varchar(20)" json:"manager_rank,omitempty"`
	WalletPIN             string          `gorm:"type:varchar(4)" json:"-"` // 4-digit wallet PIN, fallback for cash handover
	ReferralCode          string          `gorm:"type:varchar(30);uniqueIndex" json:"referral_code"`
	ReferredBy            *uuid.UUID      `gorm:"type:uuid;index" json:"referred_by"`
	TotalReferralEarnings decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_referral_earnings"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate assigns the UUID in application code so the same model
// works on postgres and the sqlite test driver.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

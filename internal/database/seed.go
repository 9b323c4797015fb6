package database

import (
	"log"
	"os"
	"sort"

	"backend/internal/model"
	"backend/internal/payout"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed fills empty configuration tables with the default rate table and
// referral level percents, and bootstraps the admin account on a fresh
// database. Existing rows are never overwritten: admin edits survive
// restarts.
func Seed(db *gorm.DB) error {
	if err := seedRates(db); err != nil {
		return err
	}
	if err := seedReferralLevels(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

func seedRates(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.PayoutRate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := payout.DefaultRates()
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := db.Create(&model.PayoutRate{Key: key, Amount: defaults[key]}).Error; err != nil {
			return err
		}
	}
	log.Printf("Seeded %d default payout rates", len(keys))
	return nil
}

func seedReferralLevels(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.ReferralLevel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for level, percent := range payout.DefaultReferralLevels() {
		if err := db.Create(&model.ReferralLevel{Level: level, Percent: percent}).Error; err != nil {
			return err
		}
	}
	log.Println("Seeded default referral levels")
	return nil
}

// seedAdmin creates the house account used for settlements. The initial
// password comes from ADMIN_PASSWORD and must be changed after first
// login.
func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Name:         "Administrator",
		Email:        "admin@example.com",
		Mobile:       "9999999999",
		Password:     string(hashed),
		Role:         model.RoleAdmin,
		WalletPIN:    "0000",
		ReferralCode: "REF-ADMIN",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded admin account (change the default password)")
	return nil
}

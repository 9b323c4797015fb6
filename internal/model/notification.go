package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a fire-and-forget in-app message. Delivery is best
// effort: the workflow never depends on it succeeding. A notification
// targets either a whole role, a single account, or (neither set) all.
type Notification struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string     `gorm:"type:varchar(255);not null" json:"title"`
	Message           string     `gorm:"type:text;not null" json:"message"`
	RelatedBillNumber string     `gorm:"type:varchar(50);index" json:"related_bill_number"`
	RecipientRole     *string    `gorm:"type:varchar(30);index" json:"recipient_role"`
	RecipientID       *uuid.UUID `gorm:"type:uuid;index" json:"recipient_id"`
	IsRead            bool       `gorm:"default:false" json:"is_read"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Announcement is the admin broadcast banner shown to every client.
// At most one announcement is active at a time.
type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ImageURL  string    `gorm:"type:text" json:"image_url"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

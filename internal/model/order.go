package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Production stage constants, in strict order.
// Lower-body garments skip KAJ_BUTTON (see internal/workflow).
const (
	StatusPending     = "PENDING"
	StatusMeasurement = "MEASUREMENT"
	StatusCutting     = "CUTTING"
	StatusStitching   = "STITCHING"
	StatusKajButton   = "KAJ_BUTTON"
	StatusFinishing   = "FINISHING"
	StatusReady       = "READY"
	StatusDelivered   = "DELIVERED"
)

// Garment type constants. Composite items (Suit, Safari Suit, Kurta
// Pyjama) never reach the Order table: booking splits them into one
// Order per physical sub-garment.
const (
	GarmentShirt    = "Shirt"
	GarmentKurta    = "Kurta"
	GarmentPant     = "Pant"
	GarmentPyjama   = "Pyjama"
	GarmentTrousers = "Trousers"
	GarmentCoat     = "Coat"
	GarmentSafari   = "Safari"
	GarmentSherwani = "Sherwani"
	GarmentJodhpuri = "Jodhpuri"

	CompositeSuit        = "Suit"
	CompositeSafariSuit  = "Safari Suit"
	CompositeKurtaPyjama = "Kurta Pyjama"
)

// PaymentStatus constants
const (
	PaymentPaid    = "Paid"
	PaymentPartial = "Partial"
)

// Priority constants
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Order is one production unit for exactly one garment piece.
// Money invariant: AdvanceAmount + PendingAmount == TotalAmount,
// PendingAmount >= 0, maintained by every settlement operation.
type Order struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	BillNumber         string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_number"`
	CustomerID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer           *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName       string              `gorm:"type:varchar(255);not null" json:"customer_name"`
	GarmentType        string              `gorm:"type:varchar(30);not null;index" json:"garment_type"`
	Status             string              `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	IsNewCustomer      bool                `gorm:"default:false" json:"is_new_customer"`
	FabricMeters       decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0" json:"fabric_meters"`
	Priority           string              `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	SalesStaffID       *uuid.UUID          `gorm:"type:uuid;index" json:"sales_staff_id"`
	ShowroomName       string              `gorm:"type:varchar(255)" json:"showroom_name"`
	AssignedWorkerID   *uuid.UUID          `gorm:"type:uuid;index" json:"assigned_worker_id"`
	AssignedWorkerName string              `gorm:"type:varchar(255)" json:"assigned_worker_name"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	AdvanceAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"advance_amount"`
	PendingAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"pending_amount"`
	PaymentStatus      string              `gorm:"type:varchar(10);not null;default:'Partial'" json:"payment_status"`
	TrialDate          *time.Time          `gorm:"type:date" json:"trial_date"`
	DeliveryDate       *time.Time          `gorm:"type:date" json:"delivery_date"`
	HandoverPIN        string              `gorm:"type:varchar(4)" json:"-"` // single-use cash handover PIN
	Notes              string              `gorm:"type:text" json:"notes"`
	History            []OrderHistoryEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"history"`
	OrderDate          time.Time           `gorm:"type:date;not null" json:"order_date"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	DeletedAt          gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderHistoryEntry is one append-only line of an order's audit trail.
// Rows are inserted, never updated or deleted.
type OrderHistoryEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Status      string    `gorm:"type:varchar(20);not null" json:"status"`
	Description string    `gorm:"type:text" json:"description"`
	UpdatedBy   string    `gorm:"type:varchar(255)" json:"updated_by"`
	Forced      bool      `gorm:"default:false" json:"forced"` // admin override, bypassed the capability check
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (e *OrderHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

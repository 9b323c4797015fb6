package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse aggregates order pipeline and money-flow metrics
// bounded by a time range.
type DashboardResponse struct {
	OrdersBooked       int             `json:"orders_booked"`
	OrdersDelivered    int             `json:"orders_delivered"`
	BookedValue        decimal.Decimal `json:"booked_value"`
	CollectedValue     decimal.Decimal `json:"collected_value"`
	PendingReceivables decimal.Decimal `json:"pending_receivables"`
	NewCustomers       int             `json:"new_customers"`
	PipelineByStatus   []StatusCount   `json:"pipeline_by_status"`
	TopGarments        []GarmentRank   `json:"top_garments"`
	TimeRangeStartDate time.Time       `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time       `json:"time_range_end_date"`
}

// StatusCount is one production stage bucket of the live pipeline.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// GarmentRank represents a garment type ranked by booked volume.
type GarmentRank struct {
	GarmentType string          `json:"garment_type"`
	TotalOrders int             `json:"total_orders"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

package service_test

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/stretchr/testify/require"
)

func TestDashboardAggregates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Umesh")

	// A suit splits into two pieces, plus one fully paid shirt.
	bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.CompositeSuit,
		TotalAmount:   "5000",
		AdvanceAmount: "1000",
	})
	shirt := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentShirt,
		TotalAmount:   "800",
		AdvanceAmount: "800",
	})

	_, err := e.orders.ForceStatus(ctx, actorOf(e.house(t)), shirt[0].BillNumber,
		service.ForceStatusRequest{Status: model.StatusDelivered})
	require.NoError(t, err)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	stats, err := e.dashboard.GetDashboard(ctx, start, end)
	require.NoError(t, err)

	require.Equal(t, 3, stats.OrdersBooked)
	require.Equal(t, 1, stats.OrdersDelivered)
	require.Equal(t, 1, stats.NewCustomers)
	requireAmount(t, "5800.00", stats.BookedValue)
	requireAmount(t, "1800.00", stats.CollectedValue)
	requireAmount(t, "4000.00", stats.PendingReceivables)

	// Only undelivered orders sit in the pipeline.
	pipeline := 0
	for _, bucket := range stats.PipelineByStatus {
		require.NotEqual(t, model.StatusDelivered, bucket.Status)
		pipeline += bucket.Count
	}
	require.Equal(t, 2, pipeline)

	require.NotEmpty(t, stats.TopGarments)
	garments := map[string]int{}
	for _, rank := range stats.TopGarments {
		garments[rank.GarmentType] = rank.TotalOrders
	}
	require.Equal(t, 1, garments[model.GarmentCoat])
	require.Equal(t, 1, garments[model.GarmentPant])
	require.Equal(t, 1, garments[model.GarmentShirt])
}

func TestDashboardIgnoresOutOfRangeBookings(t *testing.T) {
	e := newTestEnv(t)
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Yogesh")
	bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:    model.GarmentShirt,
		TotalAmount: "800",
	})

	// A window entirely in the past sees no bookings, but receivables
	// and the pipeline are point-in-time snapshots.
	end := time.Now().Add(-24 * time.Hour)
	start := end.Add(-24 * time.Hour)
	stats, err := e.dashboard.GetDashboard(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, 0, stats.OrdersBooked)
	requireAmount(t, "0.00", stats.BookedValue)
	requireAmount(t, "800.00", stats.PendingReceivables)
}

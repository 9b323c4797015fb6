package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func bookOne(t *testing.T, e *testEnv, actor service.Actor, customerID string, item service.BookingItem) []service.OrderResponse {
	t.Helper()
	orders, err := e.orders.BookOrders(context.Background(), actor, service.BookingRequest{
		CustomerID: customerID,
		Items:      []service.BookingItem{item},
	})
	require.NoError(t, err)
	return orders
}

func TestBookingSplitsCompositeEvenly(t *testing.T) {
	e := newTestEnv(t)
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Ramesh")

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.CompositeSuit,
		TotalAmount:   "5000",
		AdvanceAmount: "1000",
		FabricMeters:  "6",
	})
	require.Len(t, orders, 2)

	year := time.Now().Year()
	require.Equal(t, fmt.Sprintf("ORD-%d-00001-COAT-A", year), orders[0].BillNumber)
	require.Equal(t, fmt.Sprintf("ORD-%d-00001-PANT-A", year), orders[1].BillNumber)
	require.Equal(t, model.GarmentCoat, orders[0].GarmentType)
	require.Equal(t, model.GarmentPant, orders[1].GarmentType)

	totals := decimal.Zero
	advances := decimal.Zero
	for _, o := range orders {
		require.Equal(t, model.StatusPending, o.Status)
		require.True(t, o.IsNewCustomer)
		require.Equal(t, model.PaymentPartial, o.PaymentStatus)
		totals = totals.Add(decimal.RequireFromString(o.TotalAmount))
		advances = advances.Add(decimal.RequireFromString(o.AdvanceAmount))
	}
	requireAmount(t, "5000.00", totals)
	requireAmount(t, "1000.00", advances)

	// The same customer is no longer new on the next booking.
	again := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:    model.GarmentShirt,
		TotalAmount: "900",
	})
	require.Len(t, again, 1)
	require.False(t, again[0].IsNewCustomer)
}

func TestBookingQuantityAndOddAmounts(t *testing.T) {
	e := newTestEnv(t)
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Suresh")

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:    model.GarmentShirt,
		Quantity:    3,
		TotalAmount: "1000.01",
	})
	require.Len(t, orders, 3)

	// Copy letters distinguish the pieces of a multi-quantity booking.
	year := time.Now().Year()
	for i, suffix := range []string{"A", "B", "C"} {
		require.Equal(t, fmt.Sprintf("ORD-%d-00001-SHIRT-%s", year, suffix), orders[i].BillNumber)
	}

	// Rounding never loses a paisa: the shares recompose the total.
	totals := decimal.Zero
	for _, o := range orders {
		totals = totals.Add(decimal.RequireFromString(o.TotalAmount))
	}
	requireAmount(t, "1000.01", totals)
}

func TestBookingAdvanceNeverExceedsPieceTotal(t *testing.T) {
	e := newTestEnv(t)
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Paresh")

	// Near-equal total and advance across three pieces: rounding the two
	// splits independently would hand one piece more advance than its
	// price. Every piece must keep pending >= 0.
	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentShirt,
		Quantity:      3,
		TotalAmount:   "1.01",
		AdvanceAmount: "1.00",
	})
	require.Len(t, orders, 3)

	advances := decimal.Zero
	pendings := decimal.Zero
	for _, o := range orders {
		total := decimal.RequireFromString(o.TotalAmount)
		advance := decimal.RequireFromString(o.AdvanceAmount)
		pending := decimal.RequireFromString(o.PendingAmount)
		require.False(t, pending.IsNegative(), "piece %s has negative pending %s", o.BillNumber, o.PendingAmount)
		require.True(t, advance.Add(pending).Equal(total))
		if pending.IsZero() {
			require.Equal(t, model.PaymentPaid, o.PaymentStatus)
		} else {
			require.Equal(t, model.PaymentPartial, o.PaymentStatus)
		}
		advances = advances.Add(advance)
		pendings = pendings.Add(pending)
	}
	requireAmount(t, "1.00", advances)
	requireAmount(t, "0.01", pendings)

	// Fully paid up front stays fully paid on every piece.
	paid := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentShirt,
		Quantity:      3,
		TotalAmount:   "100.01",
		AdvanceAmount: "100.01",
	})
	for _, o := range paid {
		require.Equal(t, "0.00", o.PendingAmount)
		require.Equal(t, model.PaymentPaid, o.PaymentStatus)
	}
}

func TestBillNumbersNotReusedAfterDeletion(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Bhavesh")

	book := func() string {
		orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
			ItemType:    model.GarmentShirt,
			TotalAmount: "800",
		})
		return orders[0].BillNumber
	}

	year := time.Now().Year()
	first := book()
	book()
	require.Equal(t, fmt.Sprintf("ORD-%d-00001-SHIRT-A", year), first)

	// Deleting an order retires its number instead of freeing it.
	require.NoError(t, e.orders.DeleteOrder(ctx, first))
	_, err := e.orders.GetOrder(ctx, first)
	require.ErrorIs(t, err, service.ErrNotFound)

	require.Equal(t, fmt.Sprintf("ORD-%d-00003-SHIRT-A", year), book())

	// Even the most recent number stays retired.
	require.NoError(t, e.orders.DeleteOrder(ctx, fmt.Sprintf("ORD-%d-00003-SHIRT-A", year)))
	require.Equal(t, fmt.Sprintf("ORD-%d-00004-SHIRT-A", year), book())
}

func TestStageNotAdvancedWhenPayoutFails(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	measurement := e.createUser(t, "Measurer", model.RoleMeasurement, nil)
	customer := e.createCustomer(t, "Hitesh")

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentPant,
		TotalAmount:   "1000",
		AdvanceAmount: "1000",
	})
	bill := orders[0].BillNumber

	_, err := e.orders.UpdateStatus(ctx, actorOf(measurement), bill, service.UpdateStatusRequest{Status: model.StatusMeasurement})
	require.NoError(t, err)

	// Break the ledger: the next transition pays the measurement rate,
	// and the failed credit must take the status change down with it.
	require.NoError(t, e.db.Migrator().DropTable(&model.WalletTransaction{}))

	_, err = e.orders.UpdateStatus(ctx, actorOf(measurement), bill, service.UpdateStatusRequest{Status: model.StatusCutting})
	require.Error(t, err)

	got, err := e.orders.GetOrder(ctx, bill)
	require.NoError(t, err)
	require.Equal(t, model.StatusMeasurement, got.Status)
	require.Len(t, got.History, 2)
}

func TestBookingValidation(t *testing.T) {
	e := newTestEnv(t)
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Mahesh")

	_, err := e.orders.BookOrders(context.Background(), actorOf(showroom), service.BookingRequest{
		CustomerID: customer.ID.String(),
		Items: []service.BookingItem{{
			ItemType:      model.GarmentShirt,
			TotalAmount:   "500",
			AdvanceAmount: "600",
		}},
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.orders.BookOrders(context.Background(), actorOf(showroom), service.BookingRequest{
		CustomerID: customer.ID.String(),
		Items:      []service.BookingItem{{ItemType: model.GarmentShirt, TotalAmount: "500", TrialDate: "31-12-2026"}},
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestStatusFlowPaysEachStage(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Dinesh")

	measurement := e.createUser(t, "Measurer", model.RoleMeasurement, nil)
	cutting := e.createUser(t, "Cutter", model.RoleCutting, nil)
	pantMaker := e.createUser(t, "Pant Maker", model.RolePantMaker, nil)
	finishing := e.createUser(t, "Finisher", model.RoleFinishing, nil)
	delivery := e.createUser(t, "Delivery Boy", model.RoleDelivery, nil)

	// Fully paid up front so the final delivery needs no cash handover.
	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentPant,
		TotalAmount:   "1000",
		AdvanceAmount: "1000",
	})
	require.Len(t, orders, 1)
	bill := orders[0].BillNumber
	require.Equal(t, model.PaymentPaid, orders[0].PaymentStatus)

	step := func(actor service.Actor, status string) *service.OrderResponse {
		resp, err := e.orders.UpdateStatus(ctx, actor, bill, service.UpdateStatusRequest{Status: status})
		require.NoError(t, err)
		return resp
	}

	// Only the measurement role may pick up a PENDING order.
	_, err := e.orders.UpdateStatus(ctx, actorOf(cutting), bill, service.UpdateStatusRequest{Status: model.StatusMeasurement})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	// Taking up the order pays nothing; no work is finished yet.
	step(actorOf(measurement), model.StatusMeasurement)
	require.True(t, e.balance(t, measurement.ID).IsZero())

	// Finishing measurement pays the new-customer pant rate of 40, minus
	// the 10 percent referral deduction.
	step(actorOf(measurement), model.StatusCutting)
	requireAmount(t, "36.00", e.balance(t, measurement.ID))

	step(actorOf(cutting), model.StatusStitching)
	requireAmount(t, "36.00", e.balance(t, cutting.ID))

	// Pants skip the buttonhole stage; trying it is rejected.
	_, err = e.orders.UpdateStatus(ctx, actorOf(pantMaker), bill, service.UpdateStatusRequest{Status: model.StatusKajButton})
	require.ErrorIs(t, err, service.ErrInvalidTransition)
	step(actorOf(pantMaker), model.StatusFinishing)
	requireAmount(t, "135.00", e.balance(t, pantMaker.ID))

	step(actorOf(finishing), model.StatusReady)
	requireAmount(t, "9.00", e.balance(t, finishing.ID))

	// The delivery return bonus is paid gross, with no deduction.
	final := step(actorOf(delivery), model.StatusDelivered)
	requireAmount(t, "5.00", e.balance(t, delivery.ID))
	require.Equal(t, model.StatusDelivered, final.Status)

	// Delivered is terminal.
	_, err = e.orders.UpdateStatus(ctx, actorOf(delivery), bill, service.UpdateStatusRequest{Status: model.StatusDelivered})
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	// Booking plus six transitions leave a seven-entry trail.
	got, err := e.orders.GetOrder(ctx, bill)
	require.NoError(t, err)
	require.Len(t, got.History, 7)
}

func TestDeliveryBlockedWhileDuesPending(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	delivery := e.createUser(t, "Delivery Boy", model.RoleDelivery, nil)
	admin := e.house(t)
	customer := e.createCustomer(t, "Naresh")

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentShirt,
		TotalAmount:   "2000",
		AdvanceAmount: "500",
	})
	bill := orders[0].BillNumber

	_, err := e.orders.ForceStatus(ctx, actorOf(admin), bill, service.ForceStatusRequest{Status: model.StatusReady})
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, actorOf(delivery), bill, service.UpdateStatusRequest{Status: model.StatusDelivered})
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestSettlePayment(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Lokesh")
	house := e.house(t)

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentShirt,
		TotalAmount:   "3000",
		AdvanceAmount: "1000",
	})
	bill := orders[0].BillNumber

	resp, err := e.orders.SettlePayment(ctx, actorOf(showroom), bill, service.SettlePaymentRequest{Amount: "1500"})
	require.NoError(t, err)
	require.Equal(t, "500.00", resp.PendingAmount)
	require.Equal(t, model.PaymentPartial, resp.PaymentStatus)

	// Overpaying the remaining dues is rejected.
	_, err = e.orders.SettlePayment(ctx, actorOf(showroom), bill, service.SettlePaymentRequest{Amount: "1000"})
	require.ErrorIs(t, err, service.ErrValidation)

	resp, err = e.orders.SettlePayment(ctx, actorOf(showroom), bill, service.SettlePaymentRequest{Amount: "500"})
	require.NoError(t, err)
	require.Equal(t, "0.00", resp.PendingAmount)
	require.Equal(t, model.PaymentPaid, resp.PaymentStatus)

	// Every collected rupee lands in the house account.
	requireAmount(t, "2000.00", e.balance(t, house.ID))
}

func TestCashHandover(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	delivery := e.createUser(t, "Delivery Boy", model.RoleDelivery, nil)
	house := e.house(t)
	customer := e.createCustomer(t, "Rajesh")

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:      model.GarmentShirt,
		TotalAmount:   "2000",
		AdvanceAmount: "500",
	})
	bill := orders[0].BillNumber

	// Handover only applies to READY orders.
	_, err := e.orders.VerifyCashHandover(ctx, actorOf(delivery), bill, service.CashHandoverRequest{PIN: "1234"})
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	_, err = e.orders.ForceStatus(ctx, actorOf(house), bill, service.ForceStatusRequest{Status: model.StatusReady})
	require.NoError(t, err)

	stored, err := e.orderRepo.GetByBillNumber(ctx, bill)
	require.NoError(t, err)
	pin := stored.HandoverPIN
	require.Len(t, pin, 4)

	wrongPIN := "0000"
	if pin == wrongPIN {
		wrongPIN = "1111"
	}
	_, err = e.orders.VerifyCashHandover(ctx, actorOf(delivery), bill, service.CashHandoverRequest{PIN: wrongPIN})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	// The rejected attempt changed nothing.
	unchanged, err := e.orderRepo.GetByBillNumber(ctx, bill)
	require.NoError(t, err)
	require.Equal(t, model.StatusReady, unchanged.Status)
	requireAmount(t, "1500.00", unchanged.PendingAmount)

	resp, err := e.orders.VerifyCashHandover(ctx, actorOf(delivery), bill, service.CashHandoverRequest{PIN: pin})
	require.NoError(t, err)
	require.Equal(t, model.StatusDelivered, resp.Status)
	require.Equal(t, model.PaymentPaid, resp.PaymentStatus)
	require.Equal(t, "0.00", resp.PendingAmount)

	// Cash moves from the showroom float to the house; the delivery
	// worker earns the gross return bonus.
	requireAmount(t, "-1500.00", e.balance(t, showroom.ID))
	requireAmount(t, "1500.00", e.balance(t, house.ID))
	requireAmount(t, "5.00", e.balance(t, delivery.ID))

	// The PIN is single-use.
	settled, err := e.orderRepo.GetByBillNumber(ctx, bill)
	require.NoError(t, err)
	require.Empty(t, settled.HandoverPIN)
}

func TestForceStatusRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)
	customer := e.createCustomer(t, "Ganesh")

	orders := bookOne(t, e, actorOf(showroom), customer.ID.String(), service.BookingItem{
		ItemType:    model.GarmentShirt,
		TotalAmount: "800",
	})

	_, err := e.orders.ForceStatus(ctx, actorOf(showroom), orders[0].BillNumber, service.ForceStatusRequest{Status: model.StatusReady})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	resp, err := e.orders.ForceStatus(ctx, actorOf(e.house(t)), orders[0].BillNumber, service.ForceStatusRequest{Status: model.StatusReady})
	require.NoError(t, err)
	require.Equal(t, model.StatusReady, resp.Status)

	// The override is flagged in the trail.
	got, err := e.orders.GetOrder(ctx, orders[0].BillNumber)
	require.NoError(t, err)
	forced := false
	for _, entry := range got.History {
		forced = forced || entry.Forced
	}
	require.True(t, forced)
}

func TestMaterialActionIncentive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	material := e.createUser(t, "Storekeeper", model.RoleMaterial, nil)
	showroom := e.createUser(t, "Showroom Staff", model.RoleShowroom, nil)

	err := e.orders.RecordMaterialAction(ctx, actorOf(showroom), service.MaterialActionRequest{Action: "MATERIAL_ISSUE"})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	// Issue rate is 3, paid net of the 10 percent deduction.
	require.NoError(t, e.orders.RecordMaterialAction(ctx, actorOf(material), service.MaterialActionRequest{Action: "MATERIAL_ISSUE"}))
	requireAmount(t, "2.70", e.balance(t, material.ID))
}

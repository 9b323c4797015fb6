package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"backend/internal/service"

	"github.com/stretchr/testify/require"
)

func TestCreateCustomerDedupesByMobile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	first, err := e.customers.CreateCustomer(ctx, service.CreateCustomerRequest{
		Name:   "Prakash",
		Mobile: "9555500001",
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.Code)

	// Re-registering the same mobile returns the existing record instead
	// of forking the customer's history.
	second, err := e.customers.CreateCustomer(ctx, service.CreateCustomerRequest{
		Name:   "Prakash Kumar",
		Mobile: "9555500001",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Prakash", second.Name)

	byMobile, err := e.customers.GetByMobile(ctx, "9555500001")
	require.NoError(t, err)
	require.Equal(t, first.ID, byMobile.ID)

	_, err = e.customers.GetByMobile(ctx, "9555599999")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateMeasurements(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	created, err := e.customers.CreateCustomer(ctx, service.CreateCustomerRequest{
		Name:   "Vikram",
		Mobile: "9555500002",
	})
	require.NoError(t, err)

	doc := json.RawMessage(`{"chest":40,"sleeve":24.5,"notes":"left shoulder drop"}`)
	updated, err := e.customers.UpdateMeasurements(ctx, created.ID, service.UpdateMeasurementsRequest{
		Measurements: doc,
	})
	require.NoError(t, err)
	require.JSONEq(t, string(doc), string(updated.Measurements))

	_, err = e.customers.UpdateMeasurements(ctx, created.ID, service.UpdateMeasurementsRequest{
		Measurements: json.RawMessage(`{"chest":`),
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.customers.UpdateMeasurements(ctx, "not-a-uuid", service.UpdateMeasurementsRequest{
		Measurements: doc,
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

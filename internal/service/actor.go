package service

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies the authenticated account performing an operation.
// Handlers build it from the JWT claims.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// Notifier delivers in-app notifications. Delivery is best-effort:
// callers never fail a business operation over a notification error.
type Notifier interface {
	NotifyRole(ctx context.Context, role, title, message, relatedBill string)
	NotifyUser(ctx context.Context, userID uuid.UUID, title, message, relatedBill string)
}

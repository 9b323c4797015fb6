package service

import "errors"

// Sentinel error kinds. Services wrap these with fmt.Errorf("%w: ...")
// so handlers can map them to HTTP statuses with errors.Is while the
// message keeps the detail.
var (
	// ErrNotFound: a referenced order/account/investment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition: the requested status change is not permitted
	// from the order's current state. The order is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInsufficientFunds: a debit, transfer, or investment exceeds the
	// account's ledger balance. No partial effect.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorized: PIN mismatch on cash handover or a role acting
	// outside its department. Order and ledger unchanged.
	ErrUnauthorized = errors.New("authorization failure")

	// ErrValidation: malformed input rejected before any side effect.
	ErrValidation = errors.New("validation failure")
)

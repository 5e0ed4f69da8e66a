package errors

import "errors"

// Client errors.
var (
	ErrInvalidItems          = errors.New("invalid order items")
	ErrAmountTooLow          = errors.New("amount below minimum chargeable amount")
	ErrMissingIdempotencyKey = errors.New("missing idempotency key")
	ErrIdempotencyKeyReused  = errors.New("idempotency key reused with different request")
	ErrInvalidPayload        = errors.New("invalid payload")
)

// Authorization and lookup errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Payment integrity errors.
var (
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Upstream and persistence errors.
var (
	ErrGatewayUnconfigured = errors.New("payment gateway not configured")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	ErrLedgerUnavailable   = errors.New("order ledger unavailable")
	ErrAlreadyExists       = errors.New("already exists")
)

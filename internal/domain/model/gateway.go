package model

import "time"

// GatewayOrder is the charge intent registered with the payment gateway.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway-side order statuses reported by the fetch endpoint.
const (
	GatewayOrderCreated   = "created"
	GatewayOrderAttempted = "attempted"
	GatewayOrderPaid      = "paid"
)

// GatewayPayment is one payment attempt against a gateway order.
type GatewayPayment struct {
	ID      string
	OrderID string
	Amount  int64
	Status  string
}

// Gateway-side payment statuses.
const (
	GatewayPaymentAuthorized = "authorized"
	GatewayPaymentCaptured   = "captured"
	GatewayPaymentFailed     = "failed"
	GatewayPaymentRefunded   = "refunded"
)

// IdempotencyEntry caches a gateway order under a client idempotency key.
type IdempotencyEntry struct {
	Key         string
	Fingerprint string
	Result      GatewayOrder
	ExpiresAt   time.Time
}

// Expired reports whether the entry is past its retention at now.
func (e *IdempotencyEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

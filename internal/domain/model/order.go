package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCategory marks cart items that are bookable services rather than supplies.
const ServiceCategory = "service"

// OrderItem is a snapshot of a cart line taken when the order was placed.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Category  string          `json:"category"`
}

// IsService reports whether the item is a service booking.
func (i OrderItem) IsService() bool {
	return i.Category == ServiceCategory
}

// Order is a ledger row describing one payment order and its lifecycle.
type Order struct {
	ID               string
	GatewayOrderID   string
	GatewayPaymentID *string
	UserID           string
	Amount           int64
	Currency         string
	Status           OrderStatus
	Items            []OrderItem
	Tip              decimal.Decimal
	Address          string
	Slot             string
	AvoidCalling     bool
	IdempotencyKey   string
	Receipt          string
	RefundID         *string
	FailureReason    *string
	CreatedAt        time.Time
	PaidAt           *time.Time
	CapturedAt       *time.Time
	RefundedAt       *time.Time
	UpdatedAt        time.Time
}

// OwnedBy reports whether the order belongs to the given user.
func (o *Order) OwnedBy(userID string) bool {
	return o != nil && userID != "" && o.UserID == userID
}

// CheckoutRequest is a checkout submission as received from the client. Prices are a
// snapshot of the cart; totals are always recomputed server side.
type CheckoutRequest struct {
	UserID         string
	Items          []OrderItem
	Tip            decimal.Decimal
	Address        string
	Slot           string
	AvoidCalling   bool
	IdempotencyKey string
}

package model

import "time"

// OrderStatus describes the payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusAttempted OrderStatus = "attempted"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCaptured  OrderStatus = "captured"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:   {OrderStatusAttempted, OrderStatusPaid, OrderStatusCaptured, OrderStatusFailed},
	OrderStatusAttempted: {OrderStatusPaid, OrderStatusCaptured, OrderStatusFailed},
	OrderStatusPaid:      {OrderStatusCaptured, OrderStatusRefunded},
	OrderStatusCaptured:  {OrderStatusRefunded},
	OrderStatusFailed:    {OrderStatusCaptured},
	OrderStatusRefunded:  nil,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Successful reports whether the order has been paid from the customer's point of view.
func (s OrderStatus) Successful() bool {
	return s == OrderStatusPaid || s == OrderStatusCaptured
}

// CanTransition reports whether an order in from may move to to.
// Re-applying the current status is always allowed. A failed order can still be captured
// because the gateway accepts a new attempt on the same order; client verification can
// never revive it.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesFor lists every status from which to is reachable, to itself included.
func SourcesFor(to OrderStatus) []OrderStatus {
	var sources []OrderStatus
	for _, from := range AllStatuses() {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// ReconcileHorizon bounds how far back unsettled orders are re-checked with the gateway.
const ReconcileHorizon = 72 * time.Hour

// ReconcilableStatuses lists statuses the gateway may still settle without our involvement.
func ReconcilableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusCreated, OrderStatusAttempted, OrderStatusFailed}
}

// AllStatuses returns statuses in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusCreated,
		OrderStatusAttempted,
		OrderStatusPaid,
		OrderStatusCaptured,
		OrderStatusFailed,
		OrderStatusRefunded,
	}
}

package model

// EventKind is the closed set of gateway webhook events the ledger reacts to.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaymentAuthorized
	EventPaymentCaptured
	EventPaymentFailed
	EventRefundCreated
)

var eventNames = map[string]EventKind{
	"payment.authorized": EventPaymentAuthorized,
	"payment.captured":   EventPaymentCaptured,
	"payment.failed":     EventPaymentFailed,
	"refund.created":     EventRefundCreated,
}

// ParseEventKind maps a gateway event name to its kind; unrecognised names yield EventUnknown.
func ParseEventKind(name string) EventKind {
	if kind, ok := eventNames[name]; ok {
		return kind
	}
	return EventUnknown
}

func (k EventKind) String() string {
	for name, kind := range eventNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// WebhookEvent is a decoded, signature-verified gateway notification.
type WebhookEvent struct {
	Kind          EventKind
	Name          string
	OrderID       string
	PaymentID     string
	RefundID      string
	FailureReason string
}

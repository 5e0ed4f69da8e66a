package repository

import (
	"context"
	"time"

	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// OrderRepository is the order ledger. Every transition is a conditional single-row
// update; the returned bool reports whether a row actually changed.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	SelectStaleForReconciliation(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error)

	MarkPaid(ctx context.Context, userID, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error)
	MarkAttempted(ctx context.Context, gatewayOrderID string) (bool, error)
	MarkCaptured(ctx context.Context, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, gatewayOrderID, reason string) (bool, error)
	MarkRefunded(ctx context.Context, gatewayPaymentID, refundID string, at time.Time) (bool, error)
	// MarkRefundedByOrder matches on the gateway order when the refunded payment was never
	// recorded, and fills the payment id in.
	MarkRefundedByOrder(ctx context.Context, gatewayOrderID, gatewayPaymentID, refundID string, at time.Time) (bool, error)
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
)

// ReconcileUseCase catches up pending orders whose webhooks never arrived by asking
// the gateway for its view of the order.
type ReconcileUseCase struct {
	gateway    gateway.Client
	orders     repository.OrderRepository
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(client gateway.Client, orders repository.OrderRepository, staleAfter time.Duration, logger *slog.Logger) *ReconcileUseCase {
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &ReconcileUseCase{gateway: client, orders: orders, staleAfter: staleAfter, logger: logger, now: time.Now}
}

// StaleOrders claims up to limit pending orders older than the stale window.
func (u *ReconcileUseCase) StaleOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectStaleForReconciliation(ctx, u.now().Add(-u.staleAfter), limit)
}

// Reconcile moves order forward when the gateway reports progress. Gateway failures are
// returned so the caller can back off; orders unknown to the gateway are left untouched.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, order model.Order) error {
	remote, err := u.gateway.FetchOrder(ctx, order.GatewayOrderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.WarnContext(ctx, "gateway does not know ledger order", slog.String("gateway_order_id", order.GatewayOrderID))
			return nil
		}
		return err
	}

	var changed bool
	switch remote.Status {
	case model.GatewayOrderPaid:
		var paymentID string
		paymentID, err = u.capturedPayment(ctx, order.GatewayOrderID)
		if err != nil {
			return err
		}
		changed, err = u.orders.MarkCaptured(ctx, order.GatewayOrderID, paymentID, u.now())
		if err == nil && changed && order.Status == model.OrderStatusFailed {
			u.logger.WarnContext(ctx, "gateway settled an order recorded as failed",
				slog.String("gateway_order_id", order.GatewayOrderID),
				slog.String("gateway_payment_id", paymentID),
			)
		}
	case model.GatewayOrderAttempted:
		changed, err = u.orders.MarkAttempted(ctx, order.GatewayOrderID)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if changed {
		u.logger.InfoContext(ctx, "order reconciled with gateway",
			slog.String("gateway_order_id", order.GatewayOrderID),
			slog.String("gateway_status", remote.Status),
		)
	}
	return nil
}

// capturedPayment finds the payment that settled the order so later refunds can be matched.
// Only rate limiting is returned; other lookup failures leave the id empty.
func (u *ReconcileUseCase) capturedPayment(ctx context.Context, gatewayOrderID string) (string, error) {
	payments, err := u.gateway.FetchPayments(ctx, gatewayOrderID)
	if err != nil {
		if _, limited := gateway.IsRateLimited(err); limited {
			return "", err
		}
		u.logger.WarnContext(ctx, "capturing order without payment id",
			slog.String("gateway_order_id", gatewayOrderID),
			slog.String("error", err.Error()),
		)
		return "", nil
	}
	for _, p := range payments {
		if p.Status == model.GatewayPaymentCaptured || p.Status == model.GatewayPaymentRefunded {
			return p.ID, nil
		}
	}
	return "", nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
	"github.com/polkiloo/cleanmart/internal/pkg/signature"
)

// VerificationUseCase confirms client side payment callbacks.
type VerificationUseCase struct {
	orders    repository.OrderRepository
	keySecret string
	audit     *audit.Logger
	now       func() time.Time
}

// NewVerificationUseCase constructs VerificationUseCase. keySecret is the gateway API secret.
func NewVerificationUseCase(orders repository.OrderRepository, keySecret string, auditLogger *audit.Logger) *VerificationUseCase {
	return &VerificationUseCase{orders: orders, keySecret: keySecret, audit: auditLogger, now: time.Now}
}

// Verify checks the gateway signature and marks the caller's order paid.
func (u *VerificationUseCase) Verify(ctx context.Context, userID, gatewayOrderID, gatewayPaymentID, sig string) (*model.Order, error) {
	if u.keySecret == "" {
		return nil, domainErrors.ErrGatewayUnconfigured
	}
	gatewayOrderID = strings.TrimSpace(gatewayOrderID)
	gatewayPaymentID = strings.TrimSpace(gatewayPaymentID)
	if userID == "" || gatewayOrderID == "" || gatewayPaymentID == "" || strings.TrimSpace(sig) == "" {
		return nil, domainErrors.ErrInvalidPayload
	}

	if !signature.Verify(u.keySecret, signature.PaymentPayload(gatewayOrderID, gatewayPaymentID), sig) {
		u.audit.Critical(ctx, audit.EventSignatureMismatch,
			slog.String("user_id", userID),
			slog.String("gateway_order_id", gatewayOrderID),
			slog.String("gateway_payment_id", gatewayPaymentID),
		)
		return nil, domainErrors.ErrSignatureMismatch
	}

	changed, err := u.orders.MarkPaid(ctx, userID, gatewayOrderID, gatewayPaymentID, u.now())
	if err != nil {
		return nil, err
	}

	order, err := u.orders.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	if !order.OwnedBy(userID) {
		u.audit.Warn(ctx, audit.EventAccessDenied,
			slog.String("user_id", userID),
			slog.String("gateway_order_id", gatewayOrderID),
			slog.String("operation", "verify"),
		)
		return nil, domainErrors.ErrForbidden
	}
	if changed || order.Status.Successful() {
		return order, nil
	}

	u.audit.Warn(ctx, audit.EventStatusDiscrepancy,
		slog.String("gateway_order_id", gatewayOrderID),
		slog.String("current_status", string(order.Status)),
		slog.String("attempted_status", string(model.OrderStatusPaid)),
		slog.String("source", "verify"),
	)
	return nil, domainErrors.ErrInvalidTransition
}

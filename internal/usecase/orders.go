package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
)

// OrderUseCase exposes read-only ledger projections to order owners.
type OrderUseCase struct {
	orders repository.OrderRepository
	audit  *audit.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, auditLogger *audit.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, audit: auditLogger}
}

// ListByUser returns the user's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, domainErrors.ErrForbidden
	}
	return u.orders.ListByUser(ctx, userID)
}

// Status returns a single order owned by userID.
func (u *OrderUseCase) Status(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(userID) {
		u.audit.Warn(ctx, audit.EventAccessDenied,
			slog.String("user_id", userID),
			slog.String("order_id", orderID),
			slog.String("operation", "status"),
		)
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

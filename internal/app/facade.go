package app

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/pkg/auth"
	"github.com/polkiloo/cleanmart/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PaymentSettings holds the public gateway settings handed to checkout clients.
type PaymentSettings struct {
	KeyID     string
	Currency  string
	Available bool
}

// Services groups the collaborators behind CheckoutFacade.
type Services struct {
	Checkout     *usecase.CheckoutUseCase
	Verification *usecase.VerificationUseCase
	Webhooks     *usecase.WebhookUseCase
	Orders       *usecase.OrderUseCase
	Reconcile    *usecase.ReconcileUseCase
	Idempotency  repository.IdempotencyStore
	Tokens       auth.Strategy
	Health       HealthChecker
	Payment      PaymentSettings
}

// CheckoutFacade is the single entry point used by HTTP handlers and background workers.
type CheckoutFacade struct {
	s Services
}

func NewCheckoutFacade(s Services) *CheckoutFacade {
	return &CheckoutFacade{s: s}
}

// PaymentConfig returns the public key id clients need to open the payment widget.
func (f *CheckoutFacade) PaymentConfig(context.Context) (string, string, error) {
	if !f.s.Payment.Available || strings.TrimSpace(f.s.Payment.KeyID) == "" {
		return "", "", domainErrors.ErrGatewayUnconfigured
	}
	return f.s.Payment.KeyID, f.s.Payment.Currency, nil
}

func (f *CheckoutFacade) CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.GatewayOrder, error) {
	return f.s.Checkout.CreateOrder(ctx, req)
}

func (f *CheckoutFacade) VerifyPayment(ctx context.Context, userID, gatewayOrderID, gatewayPaymentID, signature string) (*model.Order, error) {
	return f.s.Verification.Verify(ctx, userID, gatewayOrderID, gatewayPaymentID, signature)
}

func (f *CheckoutFacade) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	return f.s.Webhooks.Handle(ctx, body, signature)
}

func (f *CheckoutFacade) Orders(ctx context.Context, userID string) ([]model.Order, error) {
	return f.s.Orders.ListByUser(ctx, userID)
}

func (f *CheckoutFacade) OrderStatus(ctx context.Context, userID, orderID string) (*model.Order, error) {
	return f.s.Orders.Status(ctx, userID, orderID)
}

func (f *CheckoutFacade) ParseToken(ctx context.Context, token string) (string, error) {
	return f.s.Tokens.ParseToken(ctx, token)
}

func (f *CheckoutFacade) Health(ctx context.Context) error {
	return f.s.Health.HealthCheck(ctx)
}

func (f *CheckoutFacade) OrdersForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	return f.s.Reconcile.StaleOrders(ctx, limit)
}

func (f *CheckoutFacade) ReconcileOrder(ctx context.Context, order model.Order) error {
	return f.s.Reconcile.Reconcile(ctx, order)
}

func (f *CheckoutFacade) SweepIdempotency(ctx context.Context) (int, error) {
	return f.s.Idempotency.Sweep(ctx)
}

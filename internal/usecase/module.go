package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	"github.com/polkiloo/cleanmart/internal/config"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newCheckoutUseCase,
	newVerificationUseCase,
	newWebhookUseCase,
	newReconcileUseCase,
	NewOrderUseCase,
)

type checkoutParams struct {
	fx.In

	Config  *config.Config
	Gateway gateway.Client
	Orders  repository.OrderRepository
	Store   repository.IdempotencyStore
	Logger  *slog.Logger
	Audit   *audit.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(p.Gateway, p.Orders, p.Store, CheckoutOptions{
		Fees:     DefaultFeeSchedule(),
		Currency: p.Config.Currency,
		TTL:      p.Config.IdempotencyTTL,
	}, p.Logger, p.Audit)
}

func newVerificationUseCase(cfg *config.Config, orders repository.OrderRepository, auditLogger *audit.Logger) *VerificationUseCase {
	return NewVerificationUseCase(orders, cfg.GatewayKeySecret, auditLogger)
}

func newWebhookUseCase(cfg *config.Config, orders repository.OrderRepository, logger *slog.Logger, auditLogger *audit.Logger) *WebhookUseCase {
	return NewWebhookUseCase(orders, cfg.GatewayWebhookSecret, logger, auditLogger)
}

func newReconcileUseCase(cfg *config.Config, client gateway.Client, orders repository.OrderRepository, logger *slog.Logger) *ReconcileUseCase {
	return NewReconcileUseCase(client, orders, cfg.ReconcileStaleAfter, logger)
}

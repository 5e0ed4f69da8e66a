package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/config"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/pkg/auth"
	"github.com/polkiloo/cleanmart/internal/storage/postgres"
	"github.com/polkiloo/cleanmart/internal/usecase"
	"github.com/polkiloo/cleanmart/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newCheckoutFacade,
		newHTTPServer,
		newReconciler,
		newSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Config       *config.Config
	Storage      *postgres.Storage
	Checkout     *usecase.CheckoutUseCase
	Verification *usecase.VerificationUseCase
	Webhooks     *usecase.WebhookUseCase
	Orders       *usecase.OrderUseCase
	Reconcile    *usecase.ReconcileUseCase
	Idempotency  repository.IdempotencyStore
	Tokens       auth.Strategy
}

func newCheckoutFacade(p facadeParams) *CheckoutFacade {
	return NewCheckoutFacade(Services{
		Checkout:     p.Checkout,
		Verification: p.Verification,
		Webhooks:     p.Webhooks,
		Orders:       p.Orders,
		Reconcile:    p.Reconcile,
		Idempotency:  p.Idempotency,
		Tokens:       p.Tokens,
		Health:       p.Storage,
		Payment: PaymentSettings{
			KeyID:     p.Config.GatewayKeyID,
			Currency:  p.Config.Currency,
			Available: p.Config.GatewayConfigured(),
		},
	})
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *CheckoutFacade
	Config *config.Config
	Logger *slog.Logger
}

func newReconciler(p workerParams) *worker.Reconciler {
	return worker.NewReconciler(
		p.Facade,
		p.Config.ReconcileInterval,
		p.Config.MaxOrdersBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

func newSweeper(p workerParams) *worker.Sweeper {
	return worker.NewSweeper(p.Facade, p.Config.IdempotencySweepInterval, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Reconciler *worker.Reconciler
	Sweeper    *worker.Sweeper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting cleanmart",
				slog.String("addr", p.Server.Addr),
				slog.Bool("gateway_configured", p.Config.GatewayConfigured()),
				slog.Bool("webhook_secret_configured", p.Config.GatewayWebhookSecret != ""),
			)
			p.Reconciler.Start(ctx)
			p.Sweeper.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Reconciler.Stop()
			p.Sweeper.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("cleanmart stopped")
			return nil
		},
	})
}

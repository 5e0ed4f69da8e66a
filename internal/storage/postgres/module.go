package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/config"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/idempotency"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		newIdempotencyStore,
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func newIdempotencyStore(cfg *config.Config, s *Storage, logger *slog.Logger) repository.IdempotencyStore {
	if cfg.IdempotencyBackend == config.IdempotencyBackendPostgres {
		return s.Idempotency()
	}
	logger.Info("using in-memory idempotency store, keys are not shared between instances")
	return idempotency.NewMemoryStore()
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}

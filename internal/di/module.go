package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	"github.com/polkiloo/cleanmart/internal/adapter/identity"
	"github.com/polkiloo/cleanmart/internal/app"
	"github.com/polkiloo/cleanmart/internal/config"
	"github.com/polkiloo/cleanmart/internal/logger"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
	"github.com/polkiloo/cleanmart/internal/pkg/auth"
	"github.com/polkiloo/cleanmart/internal/server/http/router"
	"github.com/polkiloo/cleanmart/internal/storage/postgres"
	"github.com/polkiloo/cleanmart/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		audit.Module,
		auth.Module,
		identity.Module,
		postgres.Module,
		gateway.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

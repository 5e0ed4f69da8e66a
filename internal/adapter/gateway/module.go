package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/config"
)

// Module exposes the payment gateway client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if !p.Config.GatewayConfigured() {
		p.Logger.Warn("payment gateway credentials missing, payment routes will report unavailable")
	}
	return NewHTTPClient(p.Config.GatewayBaseURL, p.Config.GatewayKeyID, p.Config.GatewayKeySecret, p.Config.GatewayTimeout, p.Logger)
}

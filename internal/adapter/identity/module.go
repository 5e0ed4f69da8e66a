package identity

import (
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/config"
	"github.com/polkiloo/cleanmart/internal/pkg/auth"
)

// Module selects how bearer tokens are resolved to user ids.
var Module = fx.Provide(newStrategy)

type strategyParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	HMAC   *auth.HMACStrategy
}

func newStrategy(p strategyParams) (auth.Strategy, error) {
	if p.Config.IdentityURL == "" {
		if p.Config.IdentitySecret == "" {
			return nil, errors.New("identity provider url or shared secret must be configured")
		}
		p.Logger.Info("identity provider url not set, using shared-secret tokens")
		return p.HMAC, nil
	}
	client, err := NewHTTPClient(p.Config.IdentityURL, p.Config.IdentityAPIKey, p.Config.GatewayTimeout, p.Logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

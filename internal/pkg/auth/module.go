package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/config"
)

// Module provides the shared-secret token strategy via fx.
var Module = fx.Provide(newHMACStrategy)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newHMACStrategy(p strategyParams) *HMACStrategy {
	return NewHMACStrategy(p.Config.IdentitySecret, Options{})
}

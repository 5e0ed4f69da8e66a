package config

import "go.uber.org/fx"

// Module loads Config once and shares it across the fx graph.
var Module = fx.Provide(Load)

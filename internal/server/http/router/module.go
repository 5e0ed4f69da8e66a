package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/cleanmart/internal/app"
	"github.com/polkiloo/cleanmart/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	func(f *app.CheckoutFacade) handlers.CheckoutFacade { return f },
	Setup,
)

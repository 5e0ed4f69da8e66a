package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cleanmart/internal/server/http/handlers"
	"github.com/polkiloo/cleanmart/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CheckoutFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(middleware.ErrorHandler(logger))

	paymentHandler := handlers.NewPaymentHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)
	// The signature covers the bytes exactly as sent, so the webhook body is never decoded.
	api.POST("/payment/webhook", middleware.LimitBody(), paymentHandler.Webhook)

	authed := api.Group("")
	authed.Use(middleware.DecompressRequest())
	authed.Use(middleware.AuthRequired(facade))
	authed.GET("/payment/config", paymentHandler.Config)
	authed.POST("/payment/create-order", paymentHandler.CreateOrder)
	authed.POST("/payment/verify", paymentHandler.Verify)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id/status", orderHandler.Status)

	return engine
}

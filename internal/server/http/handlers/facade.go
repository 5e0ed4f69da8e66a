package handlers

import (
	"context"

	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/server/http/middleware"
)

// PaymentFacade describes checkout and payment confirmation capabilities.
type PaymentFacade interface {
	PaymentConfig(ctx context.Context) (keyID, currency string, err error)
	CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.GatewayOrder, error)
	VerifyPayment(ctx context.Context, userID, gatewayOrderID, gatewayPaymentID, signature string) (*model.Order, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// OrderFacade encapsulates order queries exposed via HTTP.
type OrderFacade interface {
	Orders(ctx context.Context, userID string) ([]model.Order, error)
	OrderStatus(ctx context.Context, userID, orderID string) (*model.Order, error)
}

// HealthFacade reports service readiness.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// CheckoutFacade aggregates the full set of operations used across handlers.
type CheckoutFacade interface {
	middleware.TokenParser
	PaymentFacade
	OrderFacade
	HealthFacade
}

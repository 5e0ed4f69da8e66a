package dto

import "github.com/shopspring/decimal"

// PaymentConfigResponse exposes the public gateway key.
type PaymentConfigResponse struct {
	KeyID    string `json:"keyId"`
	Currency string `json:"currency"`
}

// CartItem is one line of the submitted cart.
type CartItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
}

// CreateOrderRequest describes checkout payload. Totals are never accepted from clients.
type CreateOrderRequest struct {
	Items          []CartItem      `json:"items"`
	Tip            decimal.Decimal `json:"tip"`
	Address        string          `json:"address"`
	Slot           string          `json:"slot"`
	AvoidCalling   bool            `json:"avoidCalling"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// CreateOrderResponse is returned to open the gateway checkout widget.
type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyRequest carries the gateway callback fields.
type VerifyRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

// VerifyResponse confirms a verified payment.
type VerifyResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// StatusResponse is a generic acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the only error body the API emits.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

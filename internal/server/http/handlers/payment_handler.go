package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/server/http/dto"
)

// IdempotencyKeyHeader may carry the key instead of the request body.
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler serves checkout, verification and gateway callbacks.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Config handles GET /api/payment/config.
func (h *PaymentHandler) Config(c *gin.Context) {
	keyID, currency, err := h.facade.PaymentConfig(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentConfigResponse{KeyID: keyID, Currency: currency})
}

// CreateOrder handles POST /api/payment/create-order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	key := req.IdempotencyKey
	if strings.TrimSpace(key) == "" {
		key = c.GetHeader(IdempotencyKeyHeader)
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.OrderItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Category:  strings.ToLower(strings.TrimSpace(item.Category)),
		})
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), model.CheckoutRequest{
		UserID:         CurrentUserID(c),
		Items:          items,
		Tip:            req.Tip,
		Address:        req.Address,
		Slot:           req.Slot,
		AvoidCalling:   req.AvoidCalling,
		IdempotencyKey: key,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateOrderResponse{OrderID: order.ID, Amount: order.Amount, Currency: order.Currency})
}

// Verify handles POST /api/payment/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.facade.VerifyPayment(c.Request.Context(), CurrentUserID(c), req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResponse{Success: true, OrderID: order.ID, Status: string(order.Status)})
}

// Webhook handles POST /api/payment/webhook. The body is read raw; the signature covers
// the exact bytes.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, fmt.Errorf("%w: read body: %w", domainErrors.ErrInvalidPayload, err))
		return
	}

	if err := h.facade.HandleWebhook(c.Request.Context(), body, c.GetHeader(gateway.SignatureHeader)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

package dto

import (
	"time"

	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// OrderResponse describes a ledger row as seen by its owner.
type OrderResponse struct {
	ID               string            `json:"id"`
	GatewayOrderID   string            `json:"gatewayOrderId"`
	GatewayPaymentID string            `json:"gatewayPaymentId,omitempty"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	Items            []model.OrderItem `json:"items"`
	Tip              string            `json:"tip"`
	Address          string            `json:"address,omitempty"`
	Slot             string            `json:"slot,omitempty"`
	AvoidCalling     bool              `json:"avoidCalling"`
	Receipt          string            `json:"receipt,omitempty"`
	FailureReason    string            `json:"failureReason,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	PaidAt           *time.Time        `json:"paidAt,omitempty"`
	CapturedAt       *time.Time        `json:"capturedAt,omitempty"`
	RefundedAt       *time.Time        `json:"refundedAt,omitempty"`
}

// NewOrderResponse projects a ledger row.
func NewOrderResponse(o model.Order) OrderResponse {
	items := o.Items
	if items == nil {
		items = []model.OrderItem{}
	}
	resp := OrderResponse{
		ID:             o.ID,
		GatewayOrderID: o.GatewayOrderID,
		Amount:         o.Amount,
		Currency:       o.Currency,
		Status:         string(o.Status),
		Items:          items,
		Tip:            o.Tip.StringFixed(2),
		Address:        o.Address,
		Slot:           o.Slot,
		AvoidCalling:   o.AvoidCalling,
		Receipt:        o.Receipt,
		CreatedAt:      o.CreatedAt,
		PaidAt:         o.PaidAt,
		CapturedAt:     o.CapturedAt,
		RefundedAt:     o.RefundedAt,
	}
	if o.GatewayPaymentID != nil {
		resp.GatewayPaymentID = *o.GatewayPaymentID
	}
	if o.FailureReason != nil {
		resp.FailureReason = *o.FailureReason
	}
	return resp
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
	"github.com/polkiloo/cleanmart/internal/pkg/signature"
)

// WebhookUseCase applies signed gateway notifications to the ledger.
type WebhookUseCase struct {
	orders repository.OrderRepository
	secret string
	logger *slog.Logger
	audit  *audit.Logger
	now    func() time.Time
}

// NewWebhookUseCase constructs WebhookUseCase. secret is the webhook signing secret, which
// is distinct from the API key secret.
func NewWebhookUseCase(orders repository.OrderRepository, secret string, logger *slog.Logger, auditLogger *audit.Logger) *WebhookUseCase {
	return &WebhookUseCase{orders: orders, secret: secret, logger: logger, audit: auditLogger, now: time.Now}
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				ErrorCode        string `json:"error_code"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes a gateway notification body.
func ParseWebhookEvent(body []byte) (model.WebhookEvent, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.WebhookEvent{}, fmt.Errorf("%w: %v", domainErrors.ErrInvalidPayload, err)
	}
	if p.Event == "" {
		return model.WebhookEvent{}, fmt.Errorf("%w: missing event name", domainErrors.ErrInvalidPayload)
	}

	event := model.WebhookEvent{Kind: model.ParseEventKind(p.Event), Name: p.Event}
	if payment := p.Payload.Payment; payment != nil {
		event.PaymentID = payment.Entity.ID
		event.OrderID = payment.Entity.OrderID
		event.FailureReason = payment.Entity.ErrorDescription
		if event.FailureReason == "" {
			event.FailureReason = payment.Entity.ErrorCode
		}
	}
	if refund := p.Payload.Refund; refund != nil {
		event.RefundID = refund.Entity.ID
		if refund.Entity.PaymentID != "" {
			event.PaymentID = refund.Entity.PaymentID
		}
	}
	return event, nil
}

// Handle authenticates body against sig and dispatches the event. A nil error means the
// notification may be acknowledged; only storage failures ask the gateway to retry.
func (u *WebhookUseCase) Handle(ctx context.Context, body []byte, sig string) error {
	if !signature.Verify(u.secret, body, sig) {
		u.audit.Critical(ctx, audit.EventWebhookInvalid,
			slog.Bool("signature_present", sig != ""),
			slog.Bool("secret_configured", u.secret != ""),
		)
		return domainErrors.ErrSignatureMismatch
	}

	event, err := ParseWebhookEvent(body)
	if err != nil {
		u.logger.WarnContext(ctx, "ignoring undecodable webhook", slog.String("error", err.Error()))
		return nil
	}

	logger := u.logger.With(
		slog.String("webhook_event", event.Name),
		slog.String("gateway_order_id", event.OrderID),
		slog.String("gateway_payment_id", event.PaymentID),
	)

	switch event.Kind {
	case model.EventPaymentAuthorized:
		return u.apply(ctx, logger, event, model.OrderStatusAttempted, event.OrderID == "", func() (bool, error) {
			return u.orders.MarkAttempted(ctx, event.OrderID)
		})
	case model.EventPaymentCaptured:
		return u.apply(ctx, logger, event, model.OrderStatusCaptured, event.OrderID == "", func() (bool, error) {
			return u.capture(ctx, event)
		})
	case model.EventPaymentFailed:
		return u.apply(ctx, logger, event, model.OrderStatusFailed, event.OrderID == "", func() (bool, error) {
			return u.orders.MarkFailed(ctx, event.OrderID, event.FailureReason)
		})
	case model.EventRefundCreated:
		return u.apply(ctx, logger, event, model.OrderStatusRefunded, event.PaymentID == "" && event.OrderID == "", func() (bool, error) {
			return u.refund(ctx, event)
		})
	default:
		logger.InfoContext(ctx, "acknowledging unhandled webhook event")
		return nil
	}
}

func (u *WebhookUseCase) apply(
	ctx context.Context,
	logger *slog.Logger,
	event model.WebhookEvent,
	target model.OrderStatus,
	missingKey bool,
	update func() (bool, error),
) error {
	if missingKey {
		logger.WarnContext(ctx, "webhook event without ledger key")
		return nil
	}

	changed, err := update()
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	if changed {
		logger.InfoContext(ctx, "order status updated", slog.String("status", string(target)))
		return nil
	}

	order, err := u.lookup(ctx, event)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		logger.InfoContext(ctx, "webhook does not match any order")
		return nil
	case err != nil:
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	// An authorization never moves an order backwards; after a failure it is just a new attempt.
	if order.Status == target || (target == model.OrderStatusAttempted && order.Status != model.OrderStatusCreated) {
		logger.DebugContext(ctx, "webhook already applied", slog.String("status", string(order.Status)))
		return nil
	}

	u.audit.Warn(ctx, audit.EventStatusDiscrepancy,
		slog.String("order_id", order.ID),
		slog.String("gateway_order_id", order.GatewayOrderID),
		slog.String("current_status", string(order.Status)),
		slog.String("attempted_status", string(target)),
		slog.String("source", "webhook"),
		slog.String("webhook_event", event.Name),
	)
	return nil
}

// capture settles the order. A capture after a recorded failure wins, since the gateway
// allows a new attempt on the same order, but it is audited.
func (u *WebhookUseCase) capture(ctx context.Context, event model.WebhookEvent) (bool, error) {
	prior, err := u.orders.GetByGatewayOrderID(ctx, event.OrderID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return false, err
	}
	changed, err := u.orders.MarkCaptured(ctx, event.OrderID, event.PaymentID, u.now())
	if err != nil || !changed || prior == nil || prior.Status != model.OrderStatusFailed {
		return changed, err
	}

	attrs := []slog.Attr{
		slog.String("order_id", prior.ID),
		slog.String("gateway_order_id", prior.GatewayOrderID),
		slog.String("gateway_payment_id", event.PaymentID),
	}
	if prior.FailureReason != nil {
		attrs = append(attrs, slog.String("failure_reason", *prior.FailureReason))
	}
	u.audit.Warn(ctx, audit.EventCapturedAfterFail, attrs...)
	return true, nil
}

// refund matches by payment id first and falls back to the gateway order, which covers
// orders settled without a recorded payment id.
func (u *WebhookUseCase) refund(ctx context.Context, event model.WebhookEvent) (bool, error) {
	if event.PaymentID != "" {
		changed, err := u.orders.MarkRefunded(ctx, event.PaymentID, event.RefundID, u.now())
		if err != nil || changed || event.OrderID == "" {
			return changed, err
		}
	}
	return u.orders.MarkRefundedByOrder(ctx, event.OrderID, event.PaymentID, event.RefundID, u.now())
}

func (u *WebhookUseCase) lookup(ctx context.Context, event model.WebhookEvent) (*model.Order, error) {
	if event.Kind != model.EventRefundCreated {
		return u.orders.GetByGatewayOrderID(ctx, event.OrderID)
	}
	if event.PaymentID != "" {
		order, err := u.orders.GetByGatewayPaymentID(ctx, event.PaymentID)
		if err == nil || !errors.Is(err, domainErrors.ErrNotFound) || event.OrderID == "" {
			return order, err
		}
	}
	return u.orders.GetByGatewayOrderID(ctx, event.OrderID)
}

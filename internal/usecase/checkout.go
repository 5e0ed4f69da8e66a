package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/domain/repository"
	"github.com/polkiloo/cleanmart/internal/idempotency"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
)

const (
	maxIdempotencyKeyLen = 255
	ledgerWriteTimeout   = 5 * time.Second
)

// CheckoutUseCase prices carts and creates gateway orders at most once per idempotency key.
type CheckoutUseCase struct {
	gateway  gateway.Client
	orders   repository.OrderRepository
	store    repository.IdempotencyStore
	fees     FeeSchedule
	currency string
	ttl      time.Duration
	logger   *slog.Logger
	audit    *audit.Logger
	now      func() time.Time
	group    singleflight.Group
}

// CheckoutOptions configures NewCheckoutUseCase.
type CheckoutOptions struct {
	Fees     FeeSchedule
	Currency string
	TTL      time.Duration
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	client gateway.Client,
	orders repository.OrderRepository,
	store repository.IdempotencyStore,
	opts CheckoutOptions,
	logger *slog.Logger,
	auditLogger *audit.Logger,
) *CheckoutUseCase {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &CheckoutUseCase{
		gateway:  client,
		orders:   orders,
		store:    store,
		fees:     opts.Fees,
		currency: opts.Currency,
		ttl:      opts.TTL,
		logger:   logger,
		audit:    auditLogger,
		now:      time.Now,
	}
}

// CreateOrder returns the gateway order for req, creating it on first use of the key.
func (u *CheckoutUseCase) CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.GatewayOrder, error) {
	clientKey := strings.TrimSpace(req.IdempotencyKey)
	if clientKey == "" {
		return nil, domainErrors.ErrMissingIdempotencyKey
	}
	if len(clientKey) > maxIdempotencyKeyLen {
		return nil, fmt.Errorf("%w: idempotency key too long", domainErrors.ErrInvalidPayload)
	}
	if req.UserID == "" {
		return nil, domainErrors.ErrForbidden
	}
	req.IdempotencyKey = clientKey

	key := idempotency.Key(req.UserID, clientKey)
	fingerprint := idempotency.Fingerprint(req.Items, req.Tip)

	v, err, _ := u.group.Do(key, func() (any, error) {
		return u.createOnce(ctx, key, fingerprint, req)
	})
	if err != nil {
		return nil, err
	}
	result := v.(model.GatewayOrder)
	return &result, nil
}

func (u *CheckoutUseCase) createOnce(ctx context.Context, key, fingerprint string, req model.CheckoutRequest) (model.GatewayOrder, error) {
	if cached, ok, err := u.cached(ctx, key, fingerprint); err != nil || ok {
		return cached, err
	}

	quote, err := u.fees.Quote(req.Items, req.Tip)
	if err != nil {
		return model.GatewayOrder{}, err
	}

	receipt := newReceipt()
	gwOrder, err := u.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   quote.Amount,
		Currency: u.currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id":         req.UserID,
			"idempotency_key": req.IdempotencyKey,
		},
	})
	if err != nil {
		return model.GatewayOrder{}, err
	}

	if gwOrder.Receipt == "" {
		gwOrder.Receipt = receipt
	}
	if gwOrder.Currency == "" {
		gwOrder.Currency = u.currency
	}

	u.recordLedger(ctx, req, gwOrder, quote.Amount)

	saved, err := u.store.Save(ctx, &model.IdempotencyEntry{
		Key:         key,
		Fingerprint: fingerprint,
		Result:      *gwOrder,
		ExpiresAt:   u.now().Add(u.ttl),
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "failed to cache checkout result",
			slog.String("gateway_order_id", gwOrder.ID),
			slog.String("error", err.Error()),
		)
		return *gwOrder, nil
	}
	if saved.Result.ID != gwOrder.ID {
		// Another instance won the key; converge on its order.
		u.logger.WarnContext(ctx, "idempotency key claimed concurrently",
			slog.String("gateway_order_id", gwOrder.ID),
			slog.String("winning_order_id", saved.Result.ID),
		)
		return saved.Result, nil
	}
	return *gwOrder, nil
}

func (u *CheckoutUseCase) cached(ctx context.Context, key, fingerprint string) (model.GatewayOrder, bool, error) {
	entry, err := u.store.Get(ctx, key)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return model.GatewayOrder{}, false, nil
	case err != nil:
		return model.GatewayOrder{}, false, fmt.Errorf("idempotency lookup: %w", err)
	case entry.Fingerprint != fingerprint:
		return model.GatewayOrder{}, false, domainErrors.ErrIdempotencyKeyReused
	default:
		return entry.Result, true, nil
	}
}

// recordLedger inserts the ledger row. The gateway order already exists, so failures are
// reported for reconciliation and never fail the checkout.
func (u *CheckoutUseCase) recordLedger(ctx context.Context, req model.CheckoutRequest, gwOrder *model.GatewayOrder, amount int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerWriteTimeout)
	defer cancel()

	order := &model.Order{
		ID:             uuid.NewString(),
		GatewayOrderID: gwOrder.ID,
		UserID:         req.UserID,
		Amount:         amount,
		Currency:       gwOrder.Currency,
		Status:         model.OrderStatusCreated,
		Items:          req.Items,
		Tip:            req.Tip,
		Address:        req.Address,
		Slot:           req.Slot,
		AvoidCalling:   req.AvoidCalling,
		IdempotencyKey: req.IdempotencyKey,
		Receipt:        gwOrder.Receipt,
	}
	if err := u.orders.Create(ctx, order); err != nil {
		u.audit.Error(ctx, audit.EventLedgerInsertFailed,
			slog.String("gateway_order_id", gwOrder.ID),
			slog.String("user_id", req.UserID),
			slog.Int64("amount", amount),
			slog.String("error", err.Error()),
		)
	}
}

func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

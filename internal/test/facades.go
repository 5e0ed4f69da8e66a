package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// WorkerFacadeStub mimics background worker interactions with the checkout facade.
type WorkerFacadeStub struct {
	Orders      [][]model.Order
	OrdersFn    func(context.Context, int) ([]model.Order, error)
	ReconcileFn func(context.Context, model.Order) error
	SweepFn     func(context.Context) (int, error)
	Reconciled  []model.Order
	Sweeps      int
	mu          sync.Mutex
	ordersCalls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// OrdersForReconciliation returns batches from configured queue.
func (s *WorkerFacadeStub) OrdersForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.ordersCalls, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// ReconcileOrder records the order after the optional hook succeeds.
func (s *WorkerFacadeStub) ReconcileOrder(ctx context.Context, order model.Order) error {
	if s.ReconcileFn != nil {
		if err := s.ReconcileFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reconciled = append(s.Reconciled, order)
	return nil
}

// SweepIdempotency counts sweeps.
func (s *WorkerFacadeStub) SweepIdempotency(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.Sweeps++
	s.mu.Unlock()
	if s.SweepFn != nil {
		return s.SweepFn(ctx)
	}
	return 0, nil
}

// CheckoutFacadeStub provides controllable behaviour for HTTP handlers.
type CheckoutFacadeStub struct {
	StrategyStub
	ConfigFn  func(context.Context) (string, string, error)
	CreateFn  func(context.Context, model.CheckoutRequest) (*model.GatewayOrder, error)
	VerifyFn  func(context.Context, string, string, string, string) (*model.Order, error)
	WebhookFn func(context.Context, []byte, string) error
	OrdersFn  func(context.Context, string) ([]model.Order, error)
	StatusFn  func(context.Context, string, string) (*model.Order, error)
	HealthErr error
}

// PaymentConfig returns a test key unless overridden.
func (s CheckoutFacadeStub) PaymentConfig(ctx context.Context) (string, string, error) {
	if s.ConfigFn != nil {
		return s.ConfigFn(ctx)
	}
	return "rzp_test_key", "INR", nil
}

// CreateOrder echoes a gateway order for the request.
func (s CheckoutFacadeStub) CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.GatewayOrder, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.GatewayOrder{ID: "order_1", Amount: 31300, Currency: "INR"}, nil
}

// VerifyPayment reports the order as paid.
func (s CheckoutFacadeStub) VerifyPayment(ctx context.Context, userID, gatewayOrderID, gatewayPaymentID, signature string) (*model.Order, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, userID, gatewayOrderID, gatewayPaymentID, signature)
	}
	return &model.Order{ID: "o1", GatewayOrderID: gatewayOrderID, UserID: userID, Status: model.OrderStatusPaid}, nil
}

// HandleWebhook accepts every delivery unless overridden.
func (s CheckoutFacadeStub) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, body, signature)
	}
	return nil
}

// Orders returns predefined orders for given user.
func (s CheckoutFacadeStub) Orders(ctx context.Context, userID string) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{ID: "o1", UserID: userID, Status: model.OrderStatusCreated}}, nil
}

// OrderStatus returns the order owned by userID.
func (s CheckoutFacadeStub) OrderStatus(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusCaptured}, nil
}

// Health returns HealthErr.
func (s CheckoutFacadeStub) Health(context.Context) error { return s.HealthErr }

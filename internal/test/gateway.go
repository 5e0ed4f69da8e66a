package test

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// GatewayStub imitates the payment gateway. By default every CreateOrder call yields a
// fresh order echoing the requested amount.
type GatewayStub struct {
	CreateFn func(context.Context, gateway.CreateOrderRequest) (*model.GatewayOrder, error)
	FetchFn    func(context.Context, string) (*model.GatewayOrder, error)
	PaymentsFn func(context.Context, string) ([]model.GatewayPayment, error)

	createCalls atomic.Int32
	fetchCalls  atomic.Int32
}

// CreateOrder records the call and delegates to CreateFn when set.
func (g *GatewayStub) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*model.GatewayOrder, error) {
	n := g.createCalls.Add(1)
	if g.CreateFn != nil {
		return g.CreateFn(ctx, req)
	}
	return &model.GatewayOrder{
		ID:       fmt.Sprintf("order_%d", n),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   model.GatewayOrderCreated,
	}, nil
}

// FetchOrder records the call and delegates to FetchFn when set.
func (g *GatewayStub) FetchOrder(ctx context.Context, id string) (*model.GatewayOrder, error) {
	g.fetchCalls.Add(1)
	if g.FetchFn != nil {
		return g.FetchFn(ctx, id)
	}
	return &model.GatewayOrder{ID: id, Status: model.GatewayOrderCreated}, nil
}

// FetchPayments delegates to PaymentsFn when set and otherwise reports no attempts.
func (g *GatewayStub) FetchPayments(ctx context.Context, id string) ([]model.GatewayPayment, error) {
	if g.PaymentsFn != nil {
		return g.PaymentsFn(ctx, id)
	}
	return nil, nil
}

// CreateCalls reports how many orders were requested.
func (g *GatewayStub) CreateCalls() int { return int(g.createCalls.Load()) }

// FetchCalls reports how many lookups were made.
func (g *GatewayStub) FetchCalls() int { return int(g.fetchCalls.Load()) }

// IdempotencyStoreStub lets tests fail individual store operations.
type IdempotencyStoreStub struct {
	GetFn   func(context.Context, string) (*model.IdempotencyEntry, error)
	SaveFn  func(context.Context, *model.IdempotencyEntry) (*model.IdempotencyEntry, error)
	SweepFn func(context.Context) (int, error)
}

func (s IdempotencyStoreStub) Get(ctx context.Context, key string) (*model.IdempotencyEntry, error) {
	return s.GetFn(ctx, key)
}

func (s IdempotencyStoreStub) Save(ctx context.Context, entry *model.IdempotencyEntry) (*model.IdempotencyEntry, error) {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, entry)
	}
	return entry, nil
}

func (s IdempotencyStoreStub) Sweep(ctx context.Context) (int, error) {
	if s.SweepFn != nil {
		return s.SweepFn(ctx)
	}
	return 0, nil
}

package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// ReconcileFacade exposes the subset of application functionality required by the reconciler.
type ReconcileFacade interface {
	OrdersForReconciliation(ctx context.Context, limit int) ([]model.Order, error)
	ReconcileOrder(ctx context.Context, order model.Order) error
}

// Reconciler polls stale pending orders and asks the gateway for their state concurrently.
type Reconciler struct {
	facade       ReconcileFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconciler constructs the reconciliation worker pool.
func NewReconciler(facade ReconcileFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Reconciler{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reconciler) fetchAndDispatch(ctx context.Context) {
	orders, err := r.facade.OrdersForReconciliation(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch orders for reconciliation failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- order:
		}
	}
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleOrder(ctx, order)
		}
	}
}

func (r *Reconciler) handleOrder(ctx context.Context, order model.Order) {
	err := r.facade.ReconcileOrder(ctx, order)
	if err == nil {
		return
	}
	if retryAfter, ok := gateway.IsRateLimited(err); ok {
		r.logger.Warn("gateway rate limited", slog.Duration("retry_after", retryAfter))
		sleep(ctx, retryAfter)
		return
	}
	r.logger.Error("order reconciliation failed",
		slog.String("gateway_order_id", order.GatewayOrderID),
		slog.String("error", err.Error()),
	)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

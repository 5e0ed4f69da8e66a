package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// OrderLedgerStub is an in-memory order ledger honouring the status transition rules.
type OrderLedgerStub struct {
	mu     sync.Mutex
	orders []*model.Order

	// Err fails every call when set; CreateErr fails only inserts.
	Err       error
	CreateErr error

	CreateCalls int
}

// NewOrderLedgerStub returns an empty ledger seeded with orders.
func NewOrderLedgerStub(orders ...model.Order) *OrderLedgerStub {
	s := &OrderLedgerStub{}
	for i := range orders {
		o := orders[i]
		s.orders = append(s.orders, &o)
	}
	return s
}

// Len returns the number of stored rows.
func (s *OrderLedgerStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Find returns a copy of the row with the given gateway order id.
func (s *OrderLedgerStub) Find(gatewayOrderID string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.GatewayOrderID == gatewayOrderID {
			return *o, true
		}
	}
	return model.Order{}, false
}

func (s *OrderLedgerStub) Create(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.Err != nil {
		return s.Err
	}
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, o := range s.orders {
		if o.GatewayOrderID == order.GatewayOrderID {
			return domainErrors.ErrAlreadyExists
		}
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	stored := *order
	s.orders = append(s.orders, &stored)
	return nil
}

func (s *OrderLedgerStub) find(match func(*model.Order) bool) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, o := range s.orders {
		if match(o) {
			copied := *o
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderLedgerStub) GetByID(_ context.Context, id string) (*model.Order, error) {
	return s.find(func(o *model.Order) bool { return o.ID == id })
}

func (s *OrderLedgerStub) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*model.Order, error) {
	return s.find(func(o *model.Order) bool { return o.GatewayOrderID == gatewayOrderID })
}

func (s *OrderLedgerStub) GetByGatewayPaymentID(_ context.Context, gatewayPaymentID string) (*model.Order, error) {
	return s.find(func(o *model.Order) bool {
		return o.GatewayPaymentID != nil && *o.GatewayPaymentID == gatewayPaymentID
	})
}

func (s *OrderLedgerStub) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	result := []model.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *OrderLedgerStub) SelectStaleForReconciliation(_ context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, o := range s.orders {
		if len(result) >= limit {
			break
		}
		if !reconcilable(o.Status) {
			continue
		}
		if o.CreatedAt.Before(olderThan) && o.CreatedAt.After(olderThan.Add(-model.ReconcileHorizon)) {
			result = append(result, *o)
		}
	}
	return result, nil
}

func reconcilable(status model.OrderStatus) bool {
	for _, st := range model.ReconcilableStatuses() {
		if st == status {
			return true
		}
	}
	return false
}

func (s *OrderLedgerStub) transition(match func(*model.Order) bool, to model.OrderStatus, apply func(*model.Order)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, o := range s.orders {
		if !match(o) {
			continue
		}
		if !model.CanTransition(o.Status, to) {
			return false, nil
		}
		o.Status = to
		if apply != nil {
			apply(o)
		}
		o.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func setOnce(dst **string, v string) {
	if *dst == nil && v != "" {
		*dst = &v
	}
}

func stampOnce(dst **time.Time, at time.Time) {
	if *dst == nil {
		*dst = &at
	}
}

func (s *OrderLedgerStub) MarkPaid(_ context.Context, userID, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error) {
	return s.transition(func(o *model.Order) bool {
		return o.GatewayOrderID == gatewayOrderID && o.UserID == userID
	}, model.OrderStatusPaid, func(o *model.Order) {
		setOnce(&o.GatewayPaymentID, gatewayPaymentID)
		stampOnce(&o.PaidAt, at)
	})
}

func (s *OrderLedgerStub) MarkAttempted(_ context.Context, gatewayOrderID string) (bool, error) {
	return s.transition(func(o *model.Order) bool { return o.GatewayOrderID == gatewayOrderID }, model.OrderStatusAttempted, nil)
}

func (s *OrderLedgerStub) MarkCaptured(_ context.Context, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error) {
	return s.transition(func(o *model.Order) bool { return o.GatewayOrderID == gatewayOrderID }, model.OrderStatusCaptured, func(o *model.Order) {
		if gatewayPaymentID != "" {
			o.GatewayPaymentID = &gatewayPaymentID
		}
		stampOnce(&o.CapturedAt, at)
	})
}

func (s *OrderLedgerStub) MarkFailed(_ context.Context, gatewayOrderID, reason string) (bool, error) {
	return s.transition(func(o *model.Order) bool { return o.GatewayOrderID == gatewayOrderID }, model.OrderStatusFailed, func(o *model.Order) {
		setOnce(&o.FailureReason, reason)
	})
}

func (s *OrderLedgerStub) MarkRefunded(_ context.Context, gatewayPaymentID, refundID string, at time.Time) (bool, error) {
	return s.transition(func(o *model.Order) bool {
		return o.GatewayPaymentID != nil && *o.GatewayPaymentID == gatewayPaymentID
	}, model.OrderStatusRefunded, func(o *model.Order) {
		setOnce(&o.RefundID, refundID)
		stampOnce(&o.RefundedAt, at)
	})
}

func (s *OrderLedgerStub) MarkRefundedByOrder(_ context.Context, gatewayOrderID, gatewayPaymentID, refundID string, at time.Time) (bool, error) {
	return s.transition(func(o *model.Order) bool {
		if o.GatewayOrderID != gatewayOrderID {
			return false
		}
		return o.GatewayPaymentID == nil || gatewayPaymentID == "" || *o.GatewayPaymentID == gatewayPaymentID
	}, model.OrderStatusRefunded, func(o *model.Order) {
		setOnce(&o.GatewayPaymentID, gatewayPaymentID)
		setOnce(&o.RefundID, refundID)
		stampOnce(&o.RefundedAt, at)
	})
}

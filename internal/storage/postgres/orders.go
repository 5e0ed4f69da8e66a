package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

const orderColumns = `id, gateway_order_id, gateway_payment_id, user_id, amount, currency, status,
       items, tip::text, address, slot, avoid_calling, idempotency_key, receipt,
       refund_id, failure_reason, created_at, paid_at, captured_at, refunded_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o     model.Order
		items []byte
		tip   string
	)
	err := row.Scan(
		&o.ID, &o.GatewayOrderID, &o.GatewayPaymentID, &o.UserID, &o.Amount, &o.Currency, &o.Status,
		&items, &tip, &o.Address, &o.Slot, &o.AvoidCalling, &o.IdempotencyKey, &o.Receipt,
		&o.RefundID, &o.FailureReason, &o.CreatedAt, &o.PaidAt, &o.CapturedAt, &o.RefundedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	if o.Tip, err = decimal.NewFromString(tip); err != nil {
		return nil, fmt.Errorf("decode tip of order %s: %w", o.ID, err)
	}
	return &o, nil
}

func statusArgs(to model.OrderStatus) []string {
	sources := model.SourcesFor(to)
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, string(s))
	}
	return out
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	const query = `INSERT INTO orders (id, gateway_order_id, user_id, amount, currency, status, items, tip,
                       address, slot, avoid_calling, idempotency_key, receipt)
                   VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::numeric, $9, $10, $11, $12, $13)
                   ON CONFLICT (gateway_order_id) DO NOTHING
                   RETURNING created_at, updated_at`
	err = r.storage.pool.QueryRow(ctx, query,
		order.ID, order.GatewayOrderID, order.UserID, order.Amount, order.Currency, order.Status, string(items), order.Tip.String(),
		order.Address, order.Slot, order.AvoidCalling, order.IdempotencyKey, order.Receipt,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "23505") {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) getOne(ctx context.Context, where string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.getOne(ctx, "id=$1", id)
}

func (r *orderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	return r.getOne(ctx, "gateway_order_id=$1", gatewayOrderID)
}

func (r *orderRepository) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*model.Order, error) {
	return r.getOne(ctx, "gateway_payment_id=$1", gatewayPaymentID)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectStaleForReconciliation claims unsettled orders created before olderThan, and within
// the reconcile horizon, that were not checked since then. Claimed rows are stamped so
// concurrent instances skip them.
func (r *orderRepository) SelectStaleForReconciliation(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	const selectQuery = `SELECT ` + orderColumns + `
                         FROM orders
                         WHERE status = ANY($1) AND created_at < $2 AND created_at > $3
                           AND (reconcile_checked_at IS NULL OR reconcile_checked_at < $2)
                         ORDER BY created_at
                         LIMIT $4
                         FOR UPDATE SKIP LOCKED`

	var pending []string
	for _, st := range model.ReconcilableStatuses() {
		pending = append(pending, string(st))
	}
	horizon := olderThan.Add(-model.ReconcileHorizon)

	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, pending, olderThan, horizon, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, *o)
			ids = append(ids, o.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if len(ids) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE orders SET reconcile_checked_at=NOW() WHERE id = ANY($1)`, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) transition(ctx context.Context, query string, args ...any) (bool, error) {
	tag, err := r.storage.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, userID, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error) {
	const query = `UPDATE orders
                   SET status=$1, gateway_payment_id=COALESCE(gateway_payment_id, $2),
                       paid_at=COALESCE(paid_at, $3), updated_at=NOW()
                   WHERE gateway_order_id=$4 AND user_id=$5 AND status = ANY($6)`
	return r.transition(ctx, query, model.OrderStatusPaid, gatewayPaymentID, at, gatewayOrderID, userID, statusArgs(model.OrderStatusPaid))
}

func (r *orderRepository) MarkAttempted(ctx context.Context, gatewayOrderID string) (bool, error) {
	const query = `UPDATE orders SET status=$1, updated_at=NOW()
                   WHERE gateway_order_id=$2 AND status = ANY($3)`
	return r.transition(ctx, query, model.OrderStatusAttempted, gatewayOrderID, statusArgs(model.OrderStatusAttempted))
}

func (r *orderRepository) MarkCaptured(ctx context.Context, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error) {
	const query = `UPDATE orders
                   SET status=$1, gateway_payment_id=COALESCE(NULLIF($2, ''), gateway_payment_id),
                       captured_at=COALESCE(captured_at, $3), updated_at=NOW()
                   WHERE gateway_order_id=$4 AND status = ANY($5)`
	return r.transition(ctx, query, model.OrderStatusCaptured, gatewayPaymentID, at, gatewayOrderID, statusArgs(model.OrderStatusCaptured))
}

func (r *orderRepository) MarkFailed(ctx context.Context, gatewayOrderID, reason string) (bool, error) {
	const query = `UPDATE orders
                   SET status=$1, failure_reason=COALESCE(failure_reason, NULLIF($2, '')), updated_at=NOW()
                   WHERE gateway_order_id=$3 AND status = ANY($4)`
	return r.transition(ctx, query, model.OrderStatusFailed, reason, gatewayOrderID, statusArgs(model.OrderStatusFailed))
}

func (r *orderRepository) MarkRefunded(ctx context.Context, gatewayPaymentID, refundID string, at time.Time) (bool, error) {
	const query = `UPDATE orders
                   SET status=$1, refund_id=COALESCE(refund_id, NULLIF($2, '')),
                       refunded_at=COALESCE(refunded_at, $3), updated_at=NOW()
                   WHERE gateway_payment_id=$4 AND status = ANY($5)`
	return r.transition(ctx, query, model.OrderStatusRefunded, refundID, at, gatewayPaymentID, statusArgs(model.OrderStatusRefunded))
}

func (r *orderRepository) MarkRefundedByOrder(ctx context.Context, gatewayOrderID, gatewayPaymentID, refundID string, at time.Time) (bool, error) {
	const query = `UPDATE orders
                   SET status=$1, gateway_payment_id=COALESCE(gateway_payment_id, NULLIF($2, '')),
                       refund_id=COALESCE(refund_id, NULLIF($3, '')),
                       refunded_at=COALESCE(refunded_at, $4), updated_at=NOW()
                   WHERE gateway_order_id=$5 AND status = ANY($6)
                     AND (gateway_payment_id IS NULL OR $2 = '' OR gateway_payment_id = $2)`
	return r.transition(ctx, query, model.OrderStatusRefunded, gatewayPaymentID, refundID, at, gatewayOrderID, statusArgs(model.OrderStatusRefunded))
}

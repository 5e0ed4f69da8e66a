package repository

import (
	"context"

	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// IdempotencyStore caches gateway order results per idempotency key.
// Get returns domain ErrNotFound for missing or expired keys. Save keeps an existing live
// entry and returns it instead of overwriting.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*model.IdempotencyEntry, error)
	Save(ctx context.Context, entry *model.IdempotencyEntry) (*model.IdempotencyEntry, error)
	Sweep(ctx context.Context) (int, error)
}

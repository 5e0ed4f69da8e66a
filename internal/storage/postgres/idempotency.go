package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

func scanEntry(row pgx.Row) (*model.IdempotencyEntry, error) {
	var (
		entry  model.IdempotencyEntry
		result []byte
	)
	if err := row.Scan(&entry.Key, &entry.Fingerprint, &result, &entry.ExpiresAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &entry.Result); err != nil {
		return nil, fmt.Errorf("decode idempotency result: %w", err)
	}
	return &entry, nil
}

func (s *idempotencyStore) Get(ctx context.Context, key string) (*model.IdempotencyEntry, error) {
	const query = `SELECT key, fingerprint, result, expires_at FROM idempotency_keys WHERE key=$1 AND expires_at > $2`
	entry, err := scanEntry(s.storage.pool.QueryRow(ctx, query, key, s.now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// Save inserts entry or replaces an expired one. A live row under the same key is kept
// and returned, so the first writer wins across instances.
func (s *idempotencyStore) Save(ctx context.Context, entry *model.IdempotencyEntry) (*model.IdempotencyEntry, error) {
	if entry == nil || entry.Key == "" {
		return nil, domainErrors.ErrInvalidPayload
	}
	result, err := json.Marshal(entry.Result)
	if err != nil {
		return nil, fmt.Errorf("encode idempotency result: %w", err)
	}

	const query = `INSERT INTO idempotency_keys (key, fingerprint, result, expires_at)
                   VALUES ($1, $2, $3::jsonb, $4)
                   ON CONFLICT (key) DO UPDATE
                   SET fingerprint = EXCLUDED.fingerprint, result = EXCLUDED.result,
                       expires_at = EXCLUDED.expires_at, created_at = NOW()
                   WHERE idempotency_keys.expires_at <= $5
                   RETURNING key, fingerprint, result, expires_at`
	saved, err := scanEntry(s.storage.pool.QueryRow(ctx, query, entry.Key, entry.Fingerprint, string(result), entry.ExpiresAt, s.now()))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s.Get(ctx, entry.Key)
}

func (s *idempotencyStore) Sweep(ctx context.Context) (int, error) {
	tag, err := s.storage.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

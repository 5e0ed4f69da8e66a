package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

const resultJSON = `{"id":"order_1","amount":31300,"currency":"INR","receipt":"rcpt_1","status":"created"}`

var entryColumns = []string{"key", "fingerprint", "result", "expires_at"}

func newMockIdempotencyStore(t *testing.T) (*idempotencyStore, pgxmockv3.PgxPoolIface, time.Time) {
	t.Helper()
	storage, mock := newMockStorage(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &idempotencyStore{storage: storage, now: func() time.Time { return now }}, mock, now
}

func TestIdempotencyStoreGet(t *testing.T) {
	store, mock, now := newMockIdempotencyStore(t)
	defer mock.Close()

	expires := now.Add(time.Hour)
	mock.ExpectQuery("SELECT key, fingerprint, result, expires_at FROM idempotency_keys").WithArgs("u:k", now).WillReturnRows(
		pgxmockv3.NewRows(entryColumns).AddRow("u:k", "fp", []byte(resultJSON), expires))
	entry, err := store.Get(context.Background(), "u:k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Result.ID != "order_1" || entry.Result.Amount != 31300 || entry.Fingerprint != "fp" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	mock.ExpectQuery("SELECT key, fingerprint, result, expires_at FROM idempotency_keys").WithArgs("missing", now).WillReturnError(pgx.ErrNoRows)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT key, fingerprint, result, expires_at FROM idempotency_keys").WithArgs("broken", now).WillReturnRows(
		pgxmockv3.NewRows(entryColumns).AddRow("broken", "fp", []byte(`{`), expires))
	if _, err := store.Get(context.Background(), "broken"); err == nil {
		t.Fatal("expected decode error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestIdempotencyStoreSave(t *testing.T) {
	store, mock, now := newMockIdempotencyStore(t)
	defer mock.Close()

	expires := now.Add(24 * time.Hour)
	entry := &model.IdempotencyEntry{
		Key:         "u:k",
		Fingerprint: "fp",
		Result:      model.GatewayOrder{ID: "order_1", Amount: 31300, Currency: "INR", Receipt: "rcpt_1", Status: "created"},
		ExpiresAt:   expires,
	}

	mock.ExpectQuery("INSERT INTO idempotency_keys").WithArgs("u:k", "fp", resultJSON, expires, now).WillReturnRows(
		pgxmockv3.NewRows(entryColumns).AddRow("u:k", "fp", []byte(resultJSON), expires))
	saved, err := store.Save(context.Background(), entry)
	if err != nil || saved.Result.ID != "order_1" {
		t.Fatalf("unexpected result %+v err=%v", saved, err)
	}

	existing := `{"id":"order_0","amount":31300,"currency":"INR","receipt":"rcpt_0","status":"created"}`
	mock.ExpectQuery("INSERT INTO idempotency_keys").WithArgs("u:k", "fp", resultJSON, expires, now).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT key, fingerprint, result, expires_at FROM idempotency_keys").WithArgs("u:k", now).WillReturnRows(
		pgxmockv3.NewRows(entryColumns).AddRow("u:k", "fp0", []byte(existing), expires))
	saved, err = store.Save(context.Background(), entry)
	if err != nil || saved.Result.ID != "order_0" || saved.Fingerprint != "fp0" {
		t.Fatalf("expected live entry to win, got %+v err=%v", saved, err)
	}

	mock.ExpectQuery("INSERT INTO idempotency_keys").WithArgs("u:k", "fp", resultJSON, expires, now).WillReturnError(errors.New("insert"))
	if _, err := store.Save(context.Background(), entry); err == nil {
		t.Fatal("expected insert error")
	}

	if _, err := store.Save(context.Background(), &model.IdempotencyEntry{}); !errors.Is(err, domainErrors.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestIdempotencyStoreSweep(t *testing.T) {
	store, mock, now := newMockIdempotencyStore(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM idempotency_keys").WithArgs(now).WillReturnResult(pgxmockv3.NewResult("DELETE", 3))
	removed, err := store.Sweep(context.Background())
	if err != nil || removed != 3 {
		t.Fatalf("expected 3 removed, got %d err=%v", removed, err)
	}

	mock.ExpectExec("DELETE FROM idempotency_keys").WithArgs(now).WillReturnError(errors.New("delete"))
	if _, err := store.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

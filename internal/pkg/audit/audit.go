// Package audit records security relevant payment events through slog.
package audit

import (
	"context"
	"log/slog"
)

// LevelCritical sits above slog.LevelError and marks events that need a human.
const LevelCritical = slog.LevelError + 4

// Event names.
const (
	EventSignatureMismatch  = "payment_signature_mismatch"
	EventWebhookInvalid     = "webhook_signature_invalid"
	EventAccessDenied       = "order_access_denied"
	EventStatusDiscrepancy  = "order_status_discrepancy"
	EventLedgerInsertFailed = "ledger_insert_failed"
	EventCapturedAfterFail  = "order_captured_after_failure"
)

// Logger writes audit records tagged with audit=true.
type Logger struct {
	logger *slog.Logger
}

// New wraps logger for audit output.
func New(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With(slog.Bool("audit", true))}
}

// Critical records a high-severity event such as a forged signature.
func (l *Logger) Critical(ctx context.Context, event string, attrs ...slog.Attr) {
	l.log(ctx, LevelCritical, event, attrs)
}

// Warn records a suspicious but non-fatal event.
func (l *Logger) Warn(ctx context.Context, event string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, event, attrs)
}

// Error records a failure that needs follow-up reconciliation.
func (l *Logger) Error(ctx context.Context, event string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, event, attrs)
}

// The event key is reserved; a caller attribute with the same key is renamed so it
// cannot shadow the record's tag.
func (l *Logger) log(ctx context.Context, level slog.Level, event string, attrs []slog.Attr) {
	out := make([]slog.Attr, 0, len(attrs)+1)
	out = append(out, slog.String("event", event))
	for _, a := range attrs {
		if a.Key == "event" {
			a.Key = "detail_event"
		}
		out = append(out, a)
	}
	l.logger.LogAttrs(ctx, level, "audit event", out...)
}

package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Idempotency store backends.
const (
	IdempotencyBackendMemory   = "memory"
	IdempotencyBackendPostgres = "postgres"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	GatewayBaseURL       string
	GatewayKeyID         string
	GatewayKeySecret     string
	GatewayWebhookSecret string
	GatewayTimeout       time.Duration
	Currency             string

	IdentityURL    string
	IdentityAPIKey string
	IdentitySecret string

	IdempotencyBackend       string
	IdempotencyTTL           time.Duration
	IdempotencySweepInterval time.Duration

	ReconcileInterval   time.Duration
	ReconcileStaleAfter time.Duration
	WorkerPoolSize      int
	MaxOrdersBatch      int

	ShutdownTimeout time.Duration
	LogLevel        slog.Level
}

const (
	defaultRunAddress               = ":8080"
	defaultGatewayBaseURL           = "https://api.razorpay.com"
	defaultGatewayTimeout           = 5 * time.Second
	defaultCurrency                 = "INR"
	defaultIdempotencyTTL           = 24 * time.Hour
	defaultIdempotencySweepInterval = 5 * time.Minute
	defaultReconcileInterval        = time.Minute
	defaultReconcileStaleAfter      = 15 * time.Minute
	defaultWorkerPoolSize           = 4
	defaultShutdownTimeout          = 10 * time.Second
	defaultMaxOrdersBatch           = 32
)

// GatewayConfigured reports whether payment gateway credentials are present.
func (c *Config) GatewayConfigured() bool {
	return c.GatewayKeyID != "" && c.GatewayKeySecret != ""
}

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:               getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:              getString(lookup, "DATABASE_URI", ""),
		GatewayBaseURL:           getString(lookup, "GATEWAY_BASE_URL", defaultGatewayBaseURL),
		GatewayKeyID:             getString(lookup, "GATEWAY_KEY_ID", ""),
		GatewayKeySecret:         getString(lookup, "GATEWAY_KEY_SECRET", ""),
		GatewayWebhookSecret:     getString(lookup, "GATEWAY_WEBHOOK_SECRET", ""),
		GatewayTimeout:           getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
		Currency:                 getString(lookup, "CURRENCY", defaultCurrency),
		IdentityURL:              getString(lookup, "IDENTITY_URL", ""),
		IdentityAPIKey:           getString(lookup, "IDENTITY_API_KEY", ""),
		IdentitySecret:           getString(lookup, "IDENTITY_SECRET", ""),
		IdempotencyBackend:       getString(lookup, "IDEMPOTENCY_BACKEND", IdempotencyBackendMemory),
		IdempotencyTTL:           getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		IdempotencySweepInterval: getDuration(lookup, "IDEMPOTENCY_SWEEP_INTERVAL", defaultIdempotencySweepInterval),
		ReconcileInterval:        getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileStaleAfter:      getDuration(lookup, "RECONCILE_STALE_AFTER", defaultReconcileStaleAfter),
		WorkerPoolSize:           getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:          getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxOrdersBatch:           getInt(lookup, "POLL_BATCH_SIZE", defaultMaxOrdersBatch),
	}

	fs := flag.NewFlagSet("cleanmart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		gatewayTimeoutStr    = cfg.GatewayTimeout.String()
		idempotencyTTLStr    = cfg.IdempotencyTTL.String()
		sweepIntervalStr     = cfg.IdempotencySweepInterval.String()
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		staleAfterStr        = cfg.ReconcileStaleAfter.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
		logLevelStr          = getString(lookup, "LOG_LEVEL", "info")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayBaseURL, "g", cfg.GatewayBaseURL, "Payment gateway base URL")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Timeout for payment gateway calls")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "ISO currency code for charges")
	fs.StringVar(&cfg.IdentityURL, "identity-url", cfg.IdentityURL, "Identity provider base URL")
	fs.StringVar(&cfg.IdentitySecret, "identity-secret", cfg.IdentitySecret, "Shared secret for session tokens")
	fs.StringVar(&cfg.IdempotencyBackend, "idempotency-backend", cfg.IdempotencyBackend, "Idempotency store backend (memory|postgres)")
	fs.StringVar(&idempotencyTTLStr, "idempotency-ttl", idempotencyTTLStr, "Idempotency key retention")
	fs.StringVar(&sweepIntervalStr, "idempotency-sweep", sweepIntervalStr, "Interval between idempotency sweeps")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between reconciliation polls")
	fs.StringVar(&staleAfterStr, "reconcile-stale-after", staleAfterStr, "Age after which pending orders are reconciled")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.IntVar(&cfg.MaxOrdersBatch, "poll-batch", cfg.MaxOrdersBatch, "Maximum orders per reconciliation batch")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.GatewayTimeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}
	if cfg.IdempotencyTTL, err = time.ParseDuration(idempotencyTTLStr); err != nil {
		return nil, fmt.Errorf("invalid idempotency ttl: %w", err)
	}
	if cfg.IdempotencySweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid idempotency sweep interval: %w", err)
	}
	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}
	if cfg.ReconcileStaleAfter, err = time.ParseDuration(staleAfterStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile stale-after: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	secrets := []struct {
		env    string
		target *string
	}{
		{"GATEWAY_KEY_SECRET_FILE", &cfg.GatewayKeySecret},
		{"GATEWAY_WEBHOOK_SECRET_FILE", &cfg.GatewayWebhookSecret},
		{"IDENTITY_SECRET_FILE", &cfg.IdentitySecret},
	}
	for _, s := range secrets {
		if secretFile, ok := lookup(s.env); ok && secretFile != "" {
			content, err := os.ReadFile(secretFile)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", strings.ToLower(s.env), err)
			}
			*s.target = strings.TrimSpace(string(content))
		}
	}

	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.IdempotencySweepInterval <= 0 {
		cfg.IdempotencySweepInterval = defaultIdempotencySweepInterval
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}
	if cfg.ReconcileStaleAfter <= 0 {
		cfg.ReconcileStaleAfter = defaultReconcileStaleAfter
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	switch cfg.IdempotencyBackend {
	case IdempotencyBackendMemory, IdempotencyBackendPostgres:
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}

	if cfg.IdentityURL == "" && cfg.IdentitySecret == "" {
		return nil, fmt.Errorf("identity provider url or identity secret must be provided")
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

package test

import "context"

// StrategyStub resolves tokens without an identity provider.
type StrategyStub struct {
	ParseFn func(context.Context, string) (string, error)
	UserID  string
	Err     error
}

// ParseToken delegates to ParseFn or returns the configured user.
func (s StrategyStub) ParseToken(ctx context.Context, token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(ctx, token)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if s.UserID == "" {
		return "user-1", nil
	}
	return s.UserID, nil
}

// Name identifies the stub in logs.
func (StrategyStub) Name() string { return "stub" }

// HealthStub reports a configurable storage health.
type HealthStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (h HealthStub) HealthCheck(context.Context) error { return h.Err }

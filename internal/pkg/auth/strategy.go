package auth

import (
	"context"
	"time"
)

// Strategy resolves an opaque bearer token to the identity provider's user id.
type Strategy interface {
	ParseToken(ctx context.Context, token string) (string, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	pkgAuth "github.com/polkiloo/cleanmart/internal/pkg/auth"
)

// UserIDContextKey is a gin context key for authenticated user identifier.
const UserIDContextKey = "userID"

// TokenParser resolves bearer tokens to user ids.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (string, error)
}

// AuthRequired ensures user is authenticated before accessing handler. Unknown tokens
// yield 401; identity provider failures yield 503.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			_ = c.Error(pkgAuth.ErrInvalidToken)
			c.Abort()
			return
		}

		userID, err := parser.ParseToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, pkgAuth.ErrInvalidToken) && !errors.Is(err, domainErrors.ErrIdentityUnavailable) {
				err = fmt.Errorf("%w: %v", domainErrors.ErrIdentityUnavailable, err)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDContextKey)
}

// fail hands err to the error formatter and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, fmt.Errorf("%w: %w", domainErrors.ErrInvalidPayload, err))
		return false
	}
	return true
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cleanmart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	pkgAuth "github.com/polkiloo/cleanmart/internal/pkg/auth"
	"github.com/polkiloo/cleanmart/internal/server/http/dto"
)

const verificationFailed = "payment verification failed"

type errorClass struct {
	target  error
	status  int
	message string // empty: use the sanitized error text
}

var errorClasses = []errorClass{
	{pkgAuth.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
	{domainErrors.ErrSignatureMismatch, http.StatusBadRequest, verificationFailed},
	{domainErrors.ErrInvalidTransition, http.StatusConflict, verificationFailed},
	{domainErrors.ErrForbidden, http.StatusForbidden, "access denied"},
	{domainErrors.ErrNotFound, http.StatusNotFound, "order not found"},
	{domainErrors.ErrIdempotencyKeyReused, http.StatusConflict, "idempotency key already used for a different cart"},
	{domainErrors.ErrInvalidItems, http.StatusBadRequest, ""},
	{domainErrors.ErrAmountTooLow, http.StatusBadRequest, ""},
	{domainErrors.ErrMissingIdempotencyKey, http.StatusBadRequest, ""},
	{domainErrors.ErrInvalidPayload, http.StatusBadRequest, ""},
	{domainErrors.ErrGatewayUnconfigured, http.StatusServiceUnavailable, "payment gateway not configured"},
	{domainErrors.ErrGatewayUnavailable, http.StatusServiceUnavailable, "payment service temporarily unavailable, retry with the same idempotency key"},
	{domainErrors.ErrIdentityUnavailable, http.StatusServiceUnavailable, "identity service unavailable"},
	{domainErrors.ErrLedgerUnavailable, http.StatusServiceUnavailable, "service temporarily unavailable"},
}

// Classify maps err to an HTTP status and a client-safe message.
func Classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "request body too large"
	}
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			if class.message == "" {
				return class.status, Sanitize(err.Error())
			}
			return class.status, class.message
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// ErrorHandler renders the last error attached by handlers or middleware.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := Classify(err)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.String("request_id", RequestIDFrom(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)

		if c.Writer.Written() {
			return
		}
		if retryAfter, ok := gateway.IsRateLimited(err); ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		}
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message, RequestID: RequestIDFrom(c)})
	}
}

var sanitizers = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`rzp_(test|live)_[A-Za-z0-9]+`), "rzp_${1}_***"},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer ***"},
	{regexp.MustCompile(`(?i)(secret|password|passwd|token|api_?key|signature)(["']?\s*[:=]\s*["']?)[^\s"'&,]+`), "${1}${2}***"},
	{regexp.MustCompile(`(?i)(postgres(ql)?|mysql|redis)://\S+`), "${1}://***"},
	{regexp.MustCompile(`\b[a-fA-F0-9]{32,}\b`), "***"},
}

// Sanitize strips credentials and secret-looking material from s.
func Sanitize(s string) string {
	for _, san := range sanitizers {
		s = san.pattern.ReplaceAllString(s, san.replace)
	}
	return s
}

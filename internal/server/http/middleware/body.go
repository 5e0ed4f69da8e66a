package middleware

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
)

// MaxBodyBytes bounds request bodies after decompression.
const MaxBodyBytes = 1 << 20

// LimitBody caps the request body without touching its encoding. Routes that authenticate
// the exact bytes on the wire use it instead of DecompressRequest.
func LimitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
		c.Next()
	}
}

// DecompressRequest transparently handles gzip encoded requests and caps the body size.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
			c.Next()
			return
		}

		originalBody := c.Request.Body
		reader, err := gzip.NewReader(originalBody)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: malformed gzip body", domainErrors.ErrInvalidPayload))
			c.Abort()
			return
		}
		defer reader.Close()
		defer originalBody.Close()

		c.Request.Body = http.MaxBytesReader(c.Writer, io.NopCloser(reader), MaxBodyBytes)
		c.Request.Header.Del("Content-Encoding")
		c.Next()
	}
}

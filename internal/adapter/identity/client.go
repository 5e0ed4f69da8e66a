package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/pkg/auth"
)

// HTTPClient resolves bearer tokens by asking the identity provider who owns them.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type userResponse struct {
	ID string `json:"id"`
}

// NewHTTPClient creates an introspection client for the provider at baseURL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse identity url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("identity url must be absolute")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	parsed.Path = path.Join(parsed.Path, "/auth/v1/user")
	return &HTTPClient{
		endpoint:   parsed.String(),
		apiKey:     apiKey,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ParseToken returns the user id behind token.
func (c *HTTPClient) ParseToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", auth.ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var data userResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", fmt.Errorf("%w: decode user: %v", domainErrors.ErrIdentityUnavailable, err)
		}
		if data.ID == "" {
			return "", auth.ErrInvalidToken
		}
		return data.ID, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", auth.ErrInvalidToken
	default:
		c.logger.Error("identity provider returned unexpected status", slog.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: %s", domainErrors.ErrIdentityUnavailable, resp.Status)
	}
}

// Name identifies the strategy in logs.
func (c *HTTPClient) Name() string {
	return "identity-http"
}

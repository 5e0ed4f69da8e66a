package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// SignatureHeader carries the webhook HMAC computed by the gateway.
const SignatureHeader = "X-Razorpay-Signature"

const maxErrorBody = 512

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Is lets callers treat rate limiting as a generic unavailability.
func (e TooManyRequestsError) Is(target error) bool {
	return target == domainErrors.ErrGatewayUnavailable
}

// CreateOrderRequest describes a charge intent.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Client exposes the gateway operations used by checkout and reconciliation.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.GatewayOrder, error)
	FetchOrder(ctx context.Context, gatewayOrderID string) (*model.GatewayOrder, error)
	FetchPayments(ctx context.Context, gatewayOrderID string) ([]model.GatewayPayment, error)
}

// HTTPClient implements Client against the gateway REST API with basic auth.
type HTTPClient struct {
	baseURL    *url.URL
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *slog.Logger
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		OrderID string `json:"order_id"`
		Amount  int64  `json:"amount"`
		Status  string `json:"status"`
	} `json:"items"`
}

// NewHTTPClient creates the gateway client. Empty credentials are accepted; every call
// then fails with ErrGatewayUnconfigured so the process keeps serving other routes.
func NewHTTPClient(baseURL, keyID, keySecret string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL:    parsed,
		keyID:      keyID,
		keySecret:  keySecret,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Configured reports whether credentials are present.
func (c *HTTPClient) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// CreateOrder registers a new gateway order.
func (c *HTTPClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.GatewayOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var data orderResponse
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &data); err != nil {
		return nil, err
	}
	return data.toModel()
}

// FetchOrder returns the gateway's current view of an order.
func (c *HTTPClient) FetchOrder(ctx context.Context, gatewayOrderID string) (*model.GatewayOrder, error) {
	if gatewayOrderID == "" {
		return nil, domainErrors.ErrInvalidPayload
	}
	var data orderResponse
	if err := c.do(ctx, http.MethodGet, path.Join("/v1/orders", url.PathEscape(gatewayOrderID)), nil, &data); err != nil {
		return nil, err
	}
	return data.toModel()
}

// FetchPayments lists the payment attempts made against an order.
func (c *HTTPClient) FetchPayments(ctx context.Context, gatewayOrderID string) ([]model.GatewayPayment, error) {
	if gatewayOrderID == "" {
		return nil, domainErrors.ErrInvalidPayload
	}
	var data paymentsResponse
	if err := c.do(ctx, http.MethodGet, path.Join("/v1/orders", url.PathEscape(gatewayOrderID), "payments"), nil, &data); err != nil {
		return nil, err
	}
	payments := make([]model.GatewayPayment, 0, len(data.Items))
	for _, item := range data.Items {
		if item.ID == "" {
			continue
		}
		payments = append(payments, model.GatewayPayment{
			ID:      item.ID,
			OrderID: item.OrderID,
			Amount:  item.Amount,
			Status:  item.Status,
		})
	}
	return payments, nil
}

func (r orderResponse) toModel() (*model.GatewayOrder, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("%w: response without order id", domainErrors.ErrGatewayUnavailable)
	}
	return &model.GatewayOrder{
		ID:       r.ID,
		Amount:   r.Amount,
		Currency: r.Currency,
		Receipt:  r.Receipt,
		Status:   r.Status,
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpointPath string, body []byte, out any) error {
	if !c.Configured() {
		return domainErrors.ErrGatewayUnconfigured
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", domainErrors.ErrGatewayUnavailable, err)
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		return domainErrors.ErrNotFound
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("gateway request failed",
			slog.String("method", method),
			slog.String("path", endpointPath),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		return fmt.Errorf("%w: %s", domainErrors.ErrGatewayUnavailable, resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

// IsRateLimited extracts the retry hint from a rate limiting error.
func IsRateLimited(err error) (time.Duration, bool) {
	var tm TooManyRequestsError
	if errors.As(err, &tm) {
		return tm.RetryAfter, true
	}
	return 0, false
}

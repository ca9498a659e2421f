package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/solar-storefront/internal/bundle"
	"github.com/example/solar-storefront/internal/checkout"
	"go.uber.org/zap"
)

const (
	checkoutPath = "/cart/checkout"
	servicesPath = "/api/services"

	MessageLoginRequired = "Please log in to complete your purchase"
	MessageServiceFailed = "Something went wrong"
)

// APIError is a non-2xx answer from the Order API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("order api: status %d: %s", e.StatusCode, e.Message)
}

// UserMessage is the text shown to the customer for this failure.
func (e *APIError) UserMessage() string {
	if e.StatusCode == http.StatusUnauthorized {
		return MessageLoginRequired
	}
	return e.Message
}

// TokenSource supplies the bearer token forwarded to the Order API, if any.
type TokenSource func(ctx context.Context) string

// Client talks JSON to the storefront's Order API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "storeapi"))
	return c
}

// SubmitOrder posts the submission to the checkout endpoint. The returned order
// body is discarded: stock and totals are reconciled locally.
func (c *Client) SubmitOrder(ctx context.Context, submission checkout.OrderSubmission) error {
	return c.do(ctx, http.MethodPost, checkoutPath, submission, nil)
}

// Service is a saved service bundle as returned by the Order API.
type Service struct {
	ID string `json:"_id"`
	bundle.Draft
}

// SaveService creates the bundle, or updates it when id is not empty.
func (c *Client) SaveService(ctx context.Context, id string, draft bundle.Draft) (Service, error) {
	method, path := http.MethodPost, servicesPath
	if id != "" {
		method, path = http.MethodPut, servicesPath+"/"+id
	}

	var envelope struct {
		Success bool    `json:"success"`
		Data    Service `json:"data"`
	}
	if err := c.do(ctx, method, path, draft, &envelope); err != nil {
		return Service{}, err
	}
	if envelope.Data.ID == "" {
		envelope.Data.ID = id
	}
	return envelope.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("order api unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		c.logger.Info("order api rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls the server's message out of an error body, accepting both
// {"message": ...} and {"error": ...}.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// IsUnauthorized reports whether err is a 401 from the Order API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

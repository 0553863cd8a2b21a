// Package orderapi is the HTTP client the wizard engine uses to reach the
// order service. Every call goes through one circuit breaker.
package orderapi

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

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned without calling the service while the breaker is open
var ErrUnavailable = errors.New("order service unavailable")

// RequestIDHeader carries a per-call id the server logs
const RequestIDHeader = "X-Request-ID"

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

// BreakerConfig configures the circuit breaker in front of the service
type BreakerConfig struct {
	Name string
	// MaxRequests allowed through while half-open
	MaxRequests uint32
	// Interval clears the failure counts while closed; 0 never clears
	Interval time.Duration
	// Timeout is how long the breaker stays open
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultConfig returns sensible defaults for baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 15 * time.Second,
		Breaker: BreakerConfig{
			Name:             "order-api",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// Client implements the engine's DraftAPI, StepAPI, OrderAPI and NotificationAPI
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// Option configures the client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient    *http.Client
	stateListener func(name string, state int)
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithStateListener is called on every breaker state change with
// 0=closed, 1=half-open, 2=open
func WithStateListener(fn func(name string, state int)) Option {
	return func(o *clientOptions) {
		o.stateListener = fn
	}
}

// NewClient creates a new order service client
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	settings := gobreaker.Settings{
		Name:        cfg.Breaker.Name,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if o.stateListener != nil {
				o.stateListener(name, int(to))
			}
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: o.httpClient,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// envelope is the body shape of every service response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details []string        `json:"details"`
}

type response struct {
	status int
	body   envelope
}

// do sends one request and decodes the data member of the response into out.
// Only transport errors and 5xx responses count against the breaker.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("Circuit breaker rejected request",
			zap.String("method", method),
			zap.String("path", path))
		return fmt.Errorf("%w: %s %s", ErrUnavailable, method, path)
	}
	if err != nil {
		return err
	}

	resp := result.(*response)
	if resp.status >= http.StatusBadRequest {
		return newAPIError(resp.status, resp.body)
	}
	if out == nil || len(resp.body.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Order service request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	resp := &response{status: httpResp.StatusCode}
	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp.body); err != nil && resp.status < http.StatusBadRequest {
			return nil, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}

	c.logger.Debug("Order service request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.status),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)))

	if resp.status >= http.StatusInternalServerError {
		return nil, newAPIError(resp.status, resp.body)
	}
	return resp, nil
}

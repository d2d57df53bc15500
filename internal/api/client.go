// Package api is the single gateway between the application and the
// remote backend. Every public method maps 1:1 to one endpoint and one
// HTTP verb; all responses are decoded into the statically declared
// shapes from internal/models.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

// HTTPDoer is the minimal transport interface, satisfied by *http.Client
// and by test doubles.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://app.fakturo.bg".
	// The "/api" prefix is appended by the client.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default transport; used by tests.
	HTTPClient HTTPDoer
}

// Client talks to the backend REST API. The bearer token is the only
// mutable state; it is set by the session layer after login and cleared
// on logout.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

const maxErrorBody = 64 << 10

// New creates a client for the backend at cfg.BaseURL. The default
// transport carries a cookie jar so legacy cookie sessions keep working
// alongside bearer auth.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	doer := cfg.HTTPClient
	if doer == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api: failed to create cookie jar: %w", err)
		}
		doer = &http.Client{Timeout: cfg.Timeout, Jar: jar}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    doer,
		logger:  logger,
	}, nil
}

// SetToken installs the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token; subsequent requests go out
// unauthenticated.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpointURL builds the absolute URL for an /api path, appending only
// the query parameters that are actually set.
func (c *Client) endpointURL(path string, query url.Values) string {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do performs one request/response round trip. Body (if non-nil) is
// JSON-encoded; out (if non-nil) receives the decoded 2xx response.
// Non-2xx responses become *APIError, failures before a response
// become *TransportError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	op := method + " /api" + path

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(path, query), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Request failed before a response was received",
			zap.String("op", op),
			zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(op, resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", op, err)
	}
	return nil
}

// errorDetail matches the backend's error body shape.
type errorDetail struct {
	Detail string `json:"detail"`
}

func (c *Client) errorFromResponse(op string, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := FallbackMessage
	if err == nil {
		var detail errorDetail
		if jsonErr := json.Unmarshal(raw, &detail); jsonErr == nil && detail.Detail != "" {
			message = detail.Detail
		}
	}

	c.logger.Debug("Backend returned an error",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message))

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// addQuery appends key=value only when value is non-empty, so absent
// optional filters never appear in the query string.
func addQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func dateRangeQuery(rng models.DateRange) url.Values {
	q := url.Values{}
	addQuery(q, "start_date", rng.StartDate)
	addQuery(q, "end_date", rng.EndDate)
	return q
}

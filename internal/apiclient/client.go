package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"restaurant-frontend/internal/domain"
)

var (
	// ErrUnauthorized matches API responses with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches API responses with status 403.
	ErrForbidden = errors.New("forbidden")
)

// Error is a non-2xx API response.
type Error struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *Error) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("api %s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

// Is maps statuses onto the package and domain sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Observer sees every API error before it is returned to the caller.
type Observer interface {
	OnAPIError(ctx context.Context, err *Error)
}

// Client talks to the restaurant REST API. Clones share the transport but each
// carries its own bearer token and observer, so one clone serves one profile.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger

	mu       sync.RWMutex
	token    string
	observer Observer
}

// New returns a Client for baseURL (without trailing slash).
func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NewWithHTTPClient is New with a caller-supplied transport.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *log.Logger) *Client {
	c := New(baseURL, 0, logger)
	c.http = hc
	return c
}

// Clone returns a Client sharing the transport, without token or observer.
func (c *Client) Clone() *Client {
	return &Client{baseURL: c.baseURL, http: c.http, logger: c.logger}
}

// SetToken sets the bearer token used for subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetObserver installs the central error interceptor.
func (c *Client) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

type idempotencyKey struct{}

// WithIdempotencyKey makes every mutating call issued with ctx carry key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the key attached by WithIdempotencyKey, if any.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}

type requestOpts struct {
	// skipObserver keeps the interceptor out of calls whose failures the caller
	// reports itself (login).
	skipObserver bool
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, opts requestOpts) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key := IdempotencyKey(ctx); key != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", key)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("api: %s %s error=%v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.logger.Printf("api: %s %s status=%d duration_ms=%d", method, path, resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Method: method, Path: path, Body: string(raw)}
		if !opts.skipObserver {
			c.mu.RLock()
			obs := c.observer
			c.mu.RUnlock()
			if obs != nil {
				obs.OnAPIError(ctx, apiErr)
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"cashier-terminal/internal/metrics"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrLocked       = errors.New("locked")
	ErrServer       = errors.New("server_error")
	ErrRejected     = errors.New("rejected")
	ErrUnavailable  = errors.New("server_unavailable")
)

// APIError carries the class of failure plus the message to show the cashier.
type APIError struct {
	Kind    error
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Kind }

// Message returns the cashier-facing text of err, or a generic line for non-API errors.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Request failed. Please try again."
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// Client talks to the game server REST API with the cashier's bearer token.
type Client struct {
	baseURL string
	inner   *http.Client
	metrics *metrics.Metrics

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		inner:   &http.Client{Timeout: timeout},
		metrics: m,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.inner.Do(req)
	if err != nil {
		c.metrics.ObserveREST(op, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{Kind: ErrUnavailable, Message: "Server is not available. Please check your connection."}
	}
	defer resp.Body.Close()
	c.metrics.ObserveREST(op, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, firstNonEmpty(env.Error, env.Message))
	}
	if env.Success != nil && !*env.Success {
		return &APIError{Kind: ErrRejected, Status: resp.StatusCode, Message: firstNonEmpty(env.Error, env.Message, "Request was rejected.")}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}

func statusError(status int, serverMsg string) *APIError {
	e := &APIError{Status: status, Message: serverMsg}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = ErrUnauthorized
		if e.Message == "" {
			e.Message = "Invalid username or password. Please try again."
		}
	case status == http.StatusForbidden:
		e.Kind = ErrForbidden
		if e.Message == "" {
			e.Message = "Access denied. You do not have permission for this action."
		}
	case status == http.StatusNotFound:
		e.Kind = ErrNotFound
		if e.Message == "" {
			e.Message = "Resource not found. Please check your request."
		}
	case status == http.StatusLocked:
		e.Kind = ErrLocked
		if e.Message == "" {
			e.Message = "Account is locked. Please contact the administrator."
		}
	case status >= 500:
		e.Kind = ErrServer
		if e.Message == "" {
			e.Message = "Server error. Please try again later."
		}
	default:
		e.Kind = ErrRejected
		if e.Message == "" {
			e.Message = fmt.Sprintf("Request failed: %s", http.StatusText(status))
		}
	}
	return e
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

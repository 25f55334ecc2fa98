// Package api is a typed client for the Pi management API.
//
// Every endpoint answers with a JSON envelope carrying a boolean "success"
// flag and, on failure, an "error" string. The client turns that envelope
// into Go errors with three shapes:
//
//	*TransportError - the request never produced a response (refused, timed out, cancelled)
//	*APIError       - the server answered success=false; Message is its text verbatim
//	ErrMalformed    - the body was not a decodable envelope
//
// There are no retries; callers decide whether to try again.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/pidash/internal/logger"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a per-request id for correlating server logs.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps how much of a response is read; container logs are the
// largest payload and are tailed to 100 lines server-side.
const maxBodyBytes = 8 << 20

// ErrMalformed reports a response that is not a valid envelope.
var ErrMalformed = errors.New("malformed response")

// APIError is an application-level failure reported by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// TransportError wraps failures that produced no usable response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s %s timed out", e.Method, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request hit its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// Canceled reports whether the caller cancelled the request.
func (e *TransportError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// IsCanceled reports whether err is a cancelled request. Pollers use it to
// drop results of cycles they already stopped.
func IsCanceled(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Canceled()
}

// Client provides typed access to the management API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        logger.Logger
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTransport swaps the round tripper, e.g. for an SSH tunnel.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.httpClient = &http.Client{Transport: rt}
		}
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		log:        logger.NewEnvLogger("[api]"),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Host returns the hostname part of the base URL.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Do sends a request and decodes the envelope into v. v may be nil when the
// caller only needs the success flag.
func (c *Client) Do(ctx context.Context, method, path string, body, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("%s %s request_id=%s failed after %s: %v", method, path, reqID, time.Since(start), err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	c.log.Debug("%s %s request_id=%s status=%d bytes=%d duration_ms=%d",
		method, path, reqID, resp.StatusCode, len(data), time.Since(start).Milliseconds())

	return decodeEnvelope(resp.StatusCode, data, v)
}

// decodeEnvelope checks the success flag and then decodes the full body into v.
func decodeEnvelope(status int, data []byte, v any) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if status >= http.StatusBadRequest {
			return &APIError{Status: status, Message: strings.TrimSpace(string(data))}
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if env.Success == nil {
		if status >= http.StatusBadRequest {
			return &APIError{Status: status, Message: env.Error}
		}
		return fmt.Errorf("%w: missing success flag", ErrMalformed)
	}
	if !*env.Success {
		return &APIError{Status: status, Message: env.Error}
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

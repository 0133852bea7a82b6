// Package rest is the thin HTTP wrapper the resource services talk
// through: JSON bodies, bearer-token auth, per-request correlation IDs,
// and a bounded exponential retry for reads.
package rest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/paperleaf/storefront-go/apperr"
)

var codec = jsoniter.ConfigFastest

// TokenSource supplies the current bearer token, or "" when the session is
// anonymous. It is called once per attempt so token rotation is picked up
// between retries.
type TokenSource func() string

// RetryPolicy bounds read retries. Attempt n sleeps BaseDelay << n before
// running, so delays grow exponentially. Writes always use SingleAttempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// SingleAttempt disables retrying.
func SingleAttempt() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// DefaultRetryPolicy retries reads up to three attempts total with a
// 250ms base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 250 * time.Millisecond}
}

// Validate checks the retry policy invariants.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return apperr.Validation("retry policy: MaxAttempts must be at least 1")
	}
	if p.BaseDelay < 0 {
		return apperr.Validation("retry policy: BaseDelay must be non-negative")
	}
	return nil
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.paperleaf.example".
	BaseURL string

	// Token supplies bearer tokens; nil means anonymous.
	Token TokenSource

	// HTTPClient overrides the transport. Nil selects a client with a
	// 30 second overall timeout.
	HTTPClient *http.Client

	// Retry is the read retry policy. The zero value selects
	// DefaultRetryPolicy.
	Retry RetryPolicy

	// Logger receives request-level debug logging. Nil selects
	// slog.Default.
	Logger *slog.Logger
}

// Client performs JSON-over-HTTP calls against the storefront API.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   TokenSource
	retry   RetryPolicy
	log     *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperr.Validation("rest: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "rest: invalid BaseURL", err)
	}

	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}
	if err := retry.Validate(); err != nil {
		return nil, err
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   httpc,
		token:   cfg.Token,
		retry:   retry,
		log:     log,
	}, nil
}

// Token returns the current bearer token, or "" for anonymous sessions.
func (c *Client) Token() string {
	if c.token == nil {
		return ""
	}
	return c.token()
}

// Get performs a read with the client's retry policy.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, c.retry)
}

// Post performs a write. Writes never retry; a failed write must be
// resubmitted explicitly.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, SingleAttempt())
}

// Put performs a write with a single attempt.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out, SingleAttempt())
}

// Delete performs a delete with a single attempt. The response body, when
// present, is decoded into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out, SingleAttempt())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, retry RetryPolicy) error {
	var payload []byte
	if body != nil {
		encoded, err := codec.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.CodeValidation, "rest: cannot encode request body", err)
		}
		payload = encoded
	}

	var lastErr error
	for attempt := 0; attempt < retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, retry.BaseDelay, attempt); err != nil {
				return err
			}
		}

		lastErr = c.attempt(ctx, method, path, query, payload, out)
		if lastErr == nil {
			return nil
		}
		if !apperr.Retryable(lastErr) {
			return lastErr
		}
		c.log.LogAttrs(ctx, slog.LevelDebug, "retrying request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()))
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return apperr.Wrap(apperr.CodeValidation, "rest: cannot build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return apperr.Wrap(apperr.CodeTimeout, "request cancelled", ctx.Err())
		}
		return apperr.Transport("network error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apperr.FromStatus(resp.StatusCode, serverMessage(resp.Body))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := codec.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Transport("malformed response body", err)
	}
	return nil
}

// serverMessage extracts the server-provided error message, if the error
// body carries one.
func serverMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

// sleepBackoff waits BaseDelay << (attempt-1), or returns early when the
// context ends first.
func sleepBackoff(ctx context.Context, base time.Duration, attempt int) error {
	if base <= 0 {
		return nil
	}
	delay := base << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apperr.Wrap(apperr.CodeTimeout, "request cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}

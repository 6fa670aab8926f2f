// Package httpclient provides the two backend clients (main and auth). Every
// call attaches the stored bearer token and every 401 clears the session and
// navigates to the login route.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/metrics"
	"github.com/jonathan/recruit-portal/internal/storage"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Client names.
const (
	Main = "main"
	Auth = "auth"
)

// Options configures a Client.
type Options struct {
	Name        string
	BaseURL     string
	ContentType string
	Timeout     time.Duration
	Tokens      *storage.TokenStore
	Navigator   Navigator
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	HTTPClient  *http.Client
}

// Client issues JSON requests against one backend base URL.
type Client struct {
	name        string
	baseURL     string
	contentType string
	http        *http.Client
	tokens      *storage.TokenStore
	nav         Navigator
	metrics     *metrics.Metrics
	log         *zap.Logger
}

// New builds a client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("httpclient %s: invalid base URL %q", opts.Name, opts.BaseURL)
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("httpclient %s: token store is required", opts.Name)
	}

	c := &Client{
		name:        opts.Name,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		contentType: opts.ContentType,
		http:        opts.HTTPClient,
		tokens:      opts.Tokens,
		nav:         opts.Navigator,
		metrics:     opts.Metrics,
		log:         opts.Logger,
	}
	if c.contentType == "" {
		c.contentType = "application/json"
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.nav == nil {
		c.nav = NavigatorFunc(func(context.Context, string) {})
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("upstream").With(zap.String("client", c.name))
	return c, nil
}

// Name returns the client name.
func (c *Client) Name() string { return c.name }

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Do performs exactly one HTTP call. A 2xx body is decoded into out when out is
// non-nil; *json.RawMessage receives the raw bytes.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	fail := func(kind Kind, status int, msg string, cause error) *Error {
		return &Error{Kind: kind, Client: c.name, Method: method, Path: path, Status: status, Message: msg, Cause: cause}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(KindTransport, 0, "failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fail(KindTransport, 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", c.contentType)
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log.Debug("token lookup failed, sending without credentials", zap.Error(err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(c.name, method, 0, time.Since(start))
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fail(KindTransport, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	c.metrics.ObserveUpstream(c.name, method, resp.StatusCode, elapsed)
	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed),
	)
	if err != nil {
		return fail(KindTransport, resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		msg := backendMessage(data)
		if msg == "" {
			msg = "unauthorized"
		}
		return fail(KindBackend, resp.StatusCode, msg, nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(KindBackend, resp.StatusCode, backendMessage(data), nil)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(KindDecode, resp.StatusCode, "invalid response body", err)
	}
	return nil
}

// handleUnauthorized clears the stored session and sends the user to login.
// It runs for every 401, including background requests.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Error("failed to clear token after 401", zap.Error(err))
	}
	c.log.Info("unauthorized response, session cleared")
	c.nav.Navigate(ctx, LoginPath)
}

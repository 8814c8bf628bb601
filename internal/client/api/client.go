package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// TokenSource yields the current Authorization header value. It is read on
// every request; session.Reader satisfies it.
type TokenSource interface {
	Authorization() (string, bool)
}

// Client talks JSON to the account API.
type Client struct {
	base           string
	http           *http.Client
	tokens         TokenSource
	logger         *slog.Logger
	onUnauthorized func(ctx context.Context)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUnauthorizedHook is called when an authenticated request is rejected
// with 401, typically to drop the local session.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New builds a client rooted at base, e.g. "http://localhost:8080/api".
func New(base string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
		tokens: tokens,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates the user identity.
func (c *Client) Register(ctx context.Context, in Credentials) error {
	return c.do(ctx, http.MethodPost, "/auth/register", false, in, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, in Credentials) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, in, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", ErrMissingToken
	}
	return out.AccessToken, nil
}

func (c *Client) Me(ctx context.Context) (Identity, error) {
	var out Identity
	err := c.do(ctx, http.MethodGet, "/auth/me", true, nil, &out)
	return out, err
}

// Logout revokes the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", true, nil, nil)
}

func (c *Client) CreateDealership(ctx context.Context, in CreateDealershipRequest) (CreateDealershipResponse, error) {
	var out CreateDealershipResponse
	err := c.do(ctx, http.MethodPost, "/dealership/create", true, in, &out)
	return out, err
}

func (c *Client) SaveSalespersonProfile(ctx context.Context, in SalespersonProfile) error {
	return c.do(ctx, http.MethodPost, "/salesperson/profile", true, in, nil)
}

// SalespersonProfile returns the caller's profile, nil when none was saved.
func (c *Client) SalespersonProfile(ctx context.Context) (*SalespersonProfile, error) {
	var out profileResponse
	if err := c.do(ctx, http.MethodGet, "/salesperson/profile", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *Client) Memberships(ctx context.Context) ([]Membership, error) {
	var out membershipsResponse
	if err := c.do(ctx, http.MethodGet, "/salesperson/memberships", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Memberships, nil
}

// Health pings the server liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", false, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if h, ok := c.tokens.Authorization(); ok {
			req.Header.Set("Authorization", h)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode/100 != 2 {
		apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode}
		var eb errorBody
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil && json.Unmarshal(raw, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && authed && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Package authlockout blocks repeated failed logins for an email and client
// IP pair until a sliding window passes.
package authlockout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Store counts failures per key. RecordFailure starts the window on the
// first failure; the count resets once it passes.
type Store interface {
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	Get(ctx context.Context, key string) (count int, resetIn time.Duration, err error)
	Clear(ctx context.Context, key string) error
}

type Config struct {
	AttemptsPerWindow int
	Window            time.Duration
}

// DefaultConfig allows five failures per fifteen minutes.
func DefaultConfig() Config {
	return Config{AttemptsPerWindow: 5, Window: 15 * time.Minute}
}

// Result is the outcome of Check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Service struct {
	store  Store
	config Config
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth lockout store is required")
	}
	s := &Service{
		store:  store,
		config: DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.AttemptsPerWindow <= 0 || s.config.Window <= 0 {
		return nil, errors.New("auth lockout attempts and window must be positive")
	}
	return s, nil
}

// Key scopes failures to one email from one client IP.
func Key(email, ip string) string {
	return strings.ToLower(email) + "|" + ip
}

// Check reports whether another attempt is allowed.
func (s *Service) Check(ctx context.Context, email, ip string) (Result, error) {
	count, resetIn, err := s.store.Get(ctx, Key(email, ip))
	if err != nil {
		return Result{}, err
	}
	if count >= s.config.AttemptsPerWindow {
		return Result{Allowed: false, RetryAfter: max(resetIn, 0)}, nil
	}
	return Result{Allowed: true, Remaining: s.config.AttemptsPerWindow - count}, nil
}

// RecordFailure counts a failed attempt and reports whether it locked the
// key.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) (locked bool, err error) {
	count, err := s.store.RecordFailure(ctx, Key(email, ip), s.config.Window)
	if err != nil {
		return false, err
	}
	if count == s.config.AttemptsPerWindow {
		s.logger.WarnContext(ctx, "login locked after repeated failures",
			"failures", count,
			"window", s.config.Window.String(),
		)
		return true, nil
	}
	return count > s.config.AttemptsPerWindow, nil
}

// Clear forgets failures after a successful login.
func (s *Service) Clear(ctx context.Context, email, ip string) error {
	return s.store.Clear(ctx, Key(email, ip))
}

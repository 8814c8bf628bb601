// Package session owns the client's bearer token: its durable copy and the
// in-memory value the transport layer turns into an Authorization header.
//
// Only Store's own methods mutate either copy. Readers (route guard, HTTP
// transport) depend on the Reader interface and observe the token per call,
// so the header can never lag behind a SetToken or ClearToken.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// SlotName is the single durable slot holding the bearer token.
const SlotName = "deales_token"

// ErrEmptyToken is returned by SetToken for an empty token.
var ErrEmptyToken = errors.New("session: token must not be empty")

// Storage is the durable slot. Load reports ok=false when nothing is stored.
// Delete of an empty slot is not an error.
type Storage interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Reader is the read-only view handed to everything except the owner.
type Reader interface {
	// Token returns the in-memory token, if any.
	Token() (string, bool)
	// Authorization returns the header value "Bearer <token>", if any.
	Authorization() (string, bool)
}

// Writer is the mutator view. Only the process wiring (CLI, orchestrator)
// receives it.
type Writer interface {
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Store is the single source of truth for the session token.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	logger  *slog.Logger
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New constructs a Store over the given durable storage. The in-memory token
// starts absent; call Hydrate once at startup.
func New(storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("session: storage is required")
	}
	s := &Store{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetToken persists token and, only once the write succeeded, exposes it to
// readers. A failed write leaves the previous state untouched.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(ctx, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	s.token = token
	s.logger.DebugContext(ctx, "session token set")
	return nil
}

// GetToken reads the durable slot. It does not touch the in-memory header.
func (s *Store) GetToken(ctx context.Context) (string, bool, error) {
	token, ok, err := s.storage.Load(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load session token: %w", err)
	}
	return token, ok && token != "", nil
}

// ClearToken drops the in-memory token and removes the durable copy. It is
// idempotent. The header is dropped even when the storage delete fails so a
// logout never leaves the client authenticated.
func (s *Store) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := s.storage.Delete(ctx); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	s.logger.DebugContext(ctx, "session token cleared")
	return nil
}

// Hydrate restores the in-memory token from durable storage without writing
// it back. Called once at process start.
func (s *Store) Hydrate(ctx context.Context) error {
	token, ok, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok && token != "" {
		s.token = token
		s.logger.DebugContext(ctx, "session restored from storage")
	}
	return nil
}

// Token implements Reader.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Authorization implements Reader.
func (s *Store) Authorization() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	return "Bearer " + s.token, true
}

var (
	_ Reader = (*Store)(nil)
	_ Writer = (*Store)(nil)
)

package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deales/pkg/requestcontext"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestPublisherEnrichesFromContext(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", chromeUA)

	p := NewPublisher(4)
	p.Emit(ctx, Event{Action: ActionUserLoggedIn, UserID: "u-1"})

	got := <-p.Inbox()
	assert.Equal(t, now, got.Timestamp)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "203.0.113.9", got.ClientIP)
	assert.Contains(t, got.Client.Browser, "Chrome")
	assert.Equal(t, "Windows 10", got.Client.OS)
	assert.False(t, got.Client.Bot)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(1)
	p.Emit(context.Background(), Event{Action: ActionUserRegistered})
	p.Emit(context.Background(), Event{Action: ActionUserRegistered})
	assert.Equal(t, int64(1), p.Dropped())
}

func TestParseClientEmpty(t *testing.T) {
	assert.Equal(t, Client{}, parseClient(""))
}

type flakyStore struct {
	mu     sync.Mutex
	fail   bool
	events []Event
}

func (s *flakyStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		s.fail = false
		return errors.New("sink down")
	}
	s.events = append(s.events, e)
	return nil
}

func (s *flakyStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestWorkerSkipsFailuresAndDrainsOnShutdown(t *testing.T) {
	store := &flakyStore{fail: true}
	p := NewPublisher(8)
	w := NewWorker(store, p.Inbox(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	p.Emit(ctx, Event{Action: ActionUserRegistered, UserID: "a"})
	p.Emit(ctx, Event{Action: ActionUserLoggedIn, UserID: "a"})
	require.Eventually(t, func() bool { return store.len() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Append(ctx, Event{Action: ActionUserRegistered, UserID: "a"}))
	require.NoError(t, s.Append(ctx, Event{Action: ActionUserRegistered, UserID: "b"}))

	byUser, err := s.ListByUser(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

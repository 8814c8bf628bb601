package audit

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mssola/useragent"

	"deales/pkg/requestcontext"
)

// Store is where the worker lands events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

const defaultBuffer = 1024

// Publisher queues events for the worker without blocking request handling.
// When the queue is full the event is dropped and counted.
type Publisher struct {
	inbox   chan Event
	dropped atomic.Int64
	logger  *slog.Logger
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(buffer int, opts ...PublisherOption) *Publisher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	p := &Publisher{
		inbox:  make(chan Event, buffer),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and enriches the event from request context, then queues it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	event.Client = parseClient(event.UserAgent)

	select {
	case p.inbox <- event:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit queue full, dropping event",
			"action", string(event.Action),
			"request_id", event.RequestID,
		)
	}
}

// Inbox is consumed by exactly one Worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Dropped reports how many events were discarded.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

func parseClient(raw string) Client {
	if strings.TrimSpace(raw) == "" {
		return Client{}
	}
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}
	return Client{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// Worker consumes audit events and persists them. A failing store is logged
// and skipped so a sink outage never stalls the queue.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run blocks until ctx is done, then drains what is already queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", string(event.Action),
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

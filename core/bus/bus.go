package bus

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dmitrymomot/eventbus/core/observable"
)

// Handler processes one emission's payload. A returned error (or a panic)
// is isolated by the dispatch engine: it is counted, routed to the
// configured error handler or the diagnostic logger, and never aborts the
// emission.
type Handler func(ctx context.Context, payload any) error

// ErrorHandler receives isolated handler and middleware failures. The
// handlerID identifies the failing subscription; middleware failures carry
// the middleware registration id.
type ErrorHandler func(err error, event string, handlerID string)

// Bus is an in-process publish/subscribe dispatcher with named events,
// payload-transforming middleware, one-shot subscriptions, and reactive
// usage metrics. Create instances with New; each bus is independent and
// owns its own registries and metrics.
//
// All methods are safe for concurrent use. Emission is synchronous: Emit
// runs the middleware chain and every matching handler to completion in
// the calling goroutine before returning.
type Bus struct {
	mu         sync.Mutex
	listeners  map[string][]*entry
	once       map[string][]*entry
	middleware map[string][]*mwEntry
	closed     bool

	metrics        *observable.Value[Metrics]
	metricsEnabled bool

	errorHandler       ErrorHandler
	log                *slog.Logger
	defaultWaitTimeout time.Duration

	done chan struct{}
}

// New creates a bus with the given options. Without options the bus keeps
// metrics enabled, logs diagnostics to a discard logger, and reports
// isolated failures through the logger only.
func New(opts ...Option) *Bus {
	b := &Bus{
		listeners:      make(map[string][]*entry),
		once:           make(map[string][]*entry),
		middleware:     make(map[string][]*mwEntry),
		metrics:        observable.New(Metrics{}),
		metricsEnabled: true,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// ListenerCount returns the number of persistent plus one-shot
// subscriptions for the event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[event]) + len(b.once[event])
}

// HasListeners reports whether any subscription exists for the event.
func (b *Bus) HasListeners(event string) bool {
	return b.ListenerCount(event) > 0
}

// EventNames returns the sorted, de-duplicated union of event names that
// currently have persistent or one-shot subscriptions.
func (b *Bus) EventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eventNamesLocked()
}

func (b *Bus) eventNamesLocked() []string {
	seen := make(map[string]struct{}, len(b.listeners)+len(b.once))
	for name, entries := range b.listeners {
		if len(entries) > 0 {
			seen[name] = struct{}{}
		}
	}
	for name, entries := range b.once {
		if len(entries) > 0 {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveAllListeners clears subscriptions for the named events, or every
// event when called with no arguments. Middleware is unaffected.
func (b *Bus) RemoveAllListeners(events ...string) {
	b.mu.Lock()
	if len(events) == 0 {
		b.listeners = make(map[string][]*entry)
		b.once = make(map[string][]*entry)
	} else {
		for _, event := range events {
			delete(b.listeners, event)
			delete(b.once, event)
		}
	}
	active := b.activeListenersLocked()
	b.mu.Unlock()

	b.storeActiveListeners(active)
}

// Destroy clears all subscriptions, middleware, and derived state, and
// rejects pending WaitFor calls with ErrBusClosed. Metrics counters are
// preserved. The bus stays safe for read-only queries afterward;
// subscribe-like operations return ErrBusClosed and Emit reports no
// listeners. Destroy is idempotent.
func (b *Bus) Destroy() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.listeners = make(map[string][]*entry)
	b.once = make(map[string][]*entry)
	b.middleware = make(map[string][]*mwEntry)
	close(b.done)
	b.mu.Unlock()

	b.storeActiveListeners(0)
	b.log.Debug("event bus destroyed")
}

func (b *Bus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Bus) activeListenersLocked() int {
	total := 0
	for _, entries := range b.listeners {
		total += len(entries)
	}
	for _, entries := range b.once {
		total += len(entries)
	}
	return total
}

// storeActiveListeners writes the recomputed listener total to the metrics
// cell. Must be called without b.mu held: observers run synchronously and
// may query the bus.
func (b *Bus) storeActiveListeners(active int) {
	b.metrics.Update(func(m Metrics) Metrics {
		m.ActiveListeners = active
		return m
	})
}

func (b *Bus) reportError(err error, event, handlerID string) {
	if b.errorHandler != nil {
		b.errorHandler(err, event, handlerID)
		return
	}
	b.log.Error("event handler failed",
		slog.String("event", event),
		slog.String("handler_id", handlerID),
		slog.Any("error", err))
}

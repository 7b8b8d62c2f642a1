package bus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Wildcard is the middleware channel applied to every event, ahead of
// event-specific middleware.
const Wildcard = "*"

// Middleware transforms a payload before handlers see it. The returned
// value replaces the payload for the rest of the chain; return the input
// unchanged to pass it through. A non-nil error (or a panic) is isolated:
// it is counted and reported, and the chain continues with the payload
// this middleware received.
type Middleware func(ctx context.Context, event string, payload any) (any, error)

type mwEntry struct {
	id string
	fn Middleware
}

// Use appends middleware to the event's chain ("*" for the wildcard
// channel) and returns a capability that unregisters this exact
// registration. The same function may be registered multiple times; each
// registration is removed independently. Returns ErrInvalidMiddleware for
// nil middleware and ErrBusClosed on a destroyed bus.
func (b *Bus) Use(event string, mw Middleware) (func(), error) {
	if mw == nil {
		return nil, ErrInvalidMiddleware
	}

	e := &mwEntry{id: uuid.NewString(), fn: mw}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	b.middleware[event] = append(b.middleware[event], e)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		chain := b.middleware[event]
		for i, existing := range chain {
			if existing.id == e.id {
				b.middleware[event] = append(chain[:i], chain[i+1:]...)
				if len(b.middleware[event]) == 0 {
					delete(b.middleware, event)
				}
				return
			}
		}
	}, nil
}

// runMiddleware executes the wildcard chain then the event chain, both in
// registration order, threading the payload through each step. It returns
// the processed payload and the number of isolated middleware failures.
func (b *Bus) runMiddleware(ctx context.Context, event string, payload any) (any, int64) {
	b.mu.Lock()
	chain := make([]*mwEntry, 0, len(b.middleware[Wildcard])+len(b.middleware[event]))
	chain = append(chain, b.middleware[Wildcard]...)
	if event != Wildcard {
		chain = append(chain, b.middleware[event]...)
	}
	b.mu.Unlock()

	var failures int64
	for _, e := range chain {
		out, err := b.applyMiddleware(ctx, e, event, payload)
		if err != nil {
			failures++
			b.reportError(err, event, e.id)
			b.log.Debug("middleware failed, continuing chain",
				slog.String("event", event),
				slog.String("middleware_id", e.id))
			continue
		}
		payload = out
	}
	return payload, failures
}

func (b *Bus) applyMiddleware(ctx context.Context, e *mwEntry, event string, payload any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("middleware panic: %v", r)
		}
	}()
	return e.fn(ctx, event, payload)
}

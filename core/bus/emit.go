package bus

import (
	"context"
	"fmt"
	"log/slog"
)

// Emit delivers payload to every subscription for the event and reports
// whether any existed. The sequence is:
//
//  1. the middleware chain produces the processed payload;
//  2. persistent subscriptions are snapshotted; one-shot subscriptions are
//     snapshotted and cleared from the registry before any handler runs, so
//     a handler that re-subscribes during its own callback is unaffected by
//     this emission and an unsubscribe during iteration cannot mutate the
//     set being walked;
//  3. inside one metrics transaction: counters are bumped, handlers run in
//     registration order (persistent first, then one-shot) with per-handler
//     error isolation, and the listener total is recomputed. Observers of
//     the metrics cell see one notification per outermost emission; an
//     Emit nested inside a handler joins the enclosing transaction, so its
//     counters land in the same committed state.
//
// Handlers run synchronously in the calling goroutine without the bus lock
// held, so they may freely subscribe, unsubscribe, or Emit again. On a
// destroyed bus Emit reports false and leaves counters untouched.
func (b *Bus) Emit(ctx context.Context, event string, payload any) bool {
	if b.isClosed() {
		return false
	}

	payload, failures := b.runMiddleware(ctx, event, payload)

	b.mu.Lock()
	persistent := append([]*entry(nil), b.listeners[event]...)
	oneShot := b.once[event]
	delete(b.once, event)
	b.mu.Unlock()

	hasListeners := len(persistent)+len(oneShot) > 0

	b.metrics.Batch(func() {
		b.metrics.Update(func(m Metrics) Metrics {
			m.TotalEventsEmitted++
			m.LastEmittedEvent = event
			return m
		})

		for _, e := range persistent {
			if !b.invoke(ctx, e, event, payload) {
				failures++
			}
		}
		for _, e := range oneShot {
			if !b.invoke(ctx, e, event, payload) {
				failures++
			}
		}

		b.mu.Lock()
		active := b.activeListenersLocked()
		b.mu.Unlock()

		b.metrics.Update(func(m Metrics) Metrics {
			m.ErrorCount += failures
			m.ActiveListeners = active
			return m
		})
	})

	b.log.Debug("event emitted",
		slog.String("event", event),
		slog.Bool("has_listeners", hasListeners))

	return hasListeners
}

// invoke runs one handler with isolation: a returned error or a recovered
// panic is reported and reflected in the emission's error count, and never
// propagates to the emitter.
func (b *Bus) invoke(ctx context.Context, e *entry, event string, payload any) (ok bool) {
	if e.filter != nil && !e.filter(payload) {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
			b.reportError(fmt.Errorf("handler panic: %v", r), event, e.id)
		}
	}()

	if err := e.fn(ctx, payload); err != nil {
		b.reportError(err, event, e.id)
		return false
	}
	return true
}

package bus

import (
	"context"
	"sync"

	"github.com/dmitrymomot/eventbus/core/observable"
)

// StreamState is the always-current view a Stream maintains: the latest
// payload delivered for the event and a running emission count.
type StreamState struct {
	Value any
	Count int
}

// Stream binds a reactive cell to one (bus, event) pair. Its internal
// persistent subscription updates the cell on every emission; the cell
// starts as {nil, 0}. A stream's lifetime is independent of the bus:
// Destroy removes only the internal subscription.
type Stream struct {
	bus   *Bus
	event string
	state *observable.Value[StreamState]

	destroyOnce sync.Once
	unsub       func()
}

// Stream creates a stream for the event. On a destroyed bus the stream is
// inert: its state never changes.
func (b *Bus) Stream(event string) *Stream {
	s := &Stream{
		bus:   b,
		event: event,
		state: observable.New(StreamState{}),
	}

	unsub, err := b.subscribeInternal(event, func(_ context.Context, payload any) error {
		s.state.Batch(func() {
			s.state.Update(func(st StreamState) StreamState {
				st.Value = payload
				st.Count++
				return st
			})
		})
		return nil
	}, false)
	if err != nil {
		unsub = func() {}
	}
	s.unsub = unsub

	return s
}

// State returns a snapshot of the latest payload and emission count.
func (s *Stream) State() StreamState {
	return s.state.Get()
}

// Subscribe adds an independent persistent handler on the stream's event
// and returns its unsubscribe capability. It does not share the stream's
// lifetime: Destroy leaves these subscriptions in place.
func (s *Stream) Subscribe(fn Handler) (func(), error) {
	return s.bus.On(s.event, fn)
}

// Observe registers an observer of the stream's cell, notified once per
// emission with the committed state.
func (s *Stream) Observe(fn func(StreamState)) func() {
	return s.state.Subscribe(fn)
}

// Destroy removes the stream's internal subscription. The cell keeps its
// last state and Observe keeps working, but no further emissions are
// recorded. Idempotent.
func (s *Stream) Destroy() {
	s.destroyOnce.Do(s.unsub)
}

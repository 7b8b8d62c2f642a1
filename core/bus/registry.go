package bus

import (
	"unsafe"

	"github.com/google/uuid"
)

// entry is one subscription slot. Identity for dedup and Off matching is
// the handler's funcval address, giving reference semantics: two closures
// built from the same literal stay distinct, while a named function or a
// reused variable matches itself. The uuid ties the returned unsubscribe
// capability to this exact slot.
type entry struct {
	id     string
	key    uintptr
	fn     Handler
	filter func(payload any) bool
}

// handlerKey returns the func value's data word, the address of its
// funcval. The entry retains fn, so the funcval stays reachable and the
// key cannot be reused while the slot lives.
func handlerKey(fn Handler) uintptr {
	return uintptr(*(*unsafe.Pointer)(unsafe.Pointer(&fn)))
}

// On registers a persistent handler for the event and returns an
// unsubscribe capability. Registering the same function twice for the same
// event is a set union: it occupies one slot and the existing capability
// stays valid. Returns ErrInvalidListener for a nil handler and
// ErrBusClosed on a destroyed bus.
func (b *Bus) On(event string, fn Handler, opts ...SubscribeOption) (func(), error) {
	return b.subscribe(event, fn, false, opts)
}

// Once registers a one-shot handler: it is removed from the registry
// before its first invocation, so it observes at most one emission. The
// returned capability removes it early. One-shot slots are tracked
// independently of persistent ones; the same function may hold one slot
// of each kind.
func (b *Bus) Once(event string, fn Handler, opts ...SubscribeOption) (func(), error) {
	return b.subscribe(event, fn, true, opts)
}

func (b *Bus) subscribe(event string, fn Handler, once bool, opts []SubscribeOption) (func(), error) {
	if fn == nil {
		return nil, ErrInvalidListener
	}
	return b.register(event, fn, handlerKey(fn), once, opts)
}

// subscribeInternal registers machinery subscriptions (streams, pipes,
// waiters). They carry a zero key, which never matches a caller-supplied
// handler, so identity dedup and Off cannot touch them and any number of
// them may coexist on one event.
func (b *Bus) subscribeInternal(event string, fn Handler, once bool) (func(), error) {
	return b.register(event, fn, 0, once, nil)
}

func (b *Bus) register(event string, fn Handler, key uintptr, once bool, opts []SubscribeOption) (func(), error) {
	e := &entry{
		id:  uuid.NewString(),
		key: key,
		fn:  fn,
	}
	for _, opt := range opts {
		opt(e)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}

	set := b.listeners
	if once {
		set = b.once
	}
	for _, existing := range set[event] {
		if e.key != 0 && existing.key == e.key {
			b.mu.Unlock()
			return b.unsubscriber(event, existing.id, once), nil
		}
	}
	set[event] = append(set[event], e)
	active := b.activeListenersLocked()
	b.mu.Unlock()

	b.storeActiveListeners(active)
	return b.unsubscriber(event, e.id, once), nil
}

// Off removes every subscription for the event whose identity matches fn,
// persistent and one-shot alike. Removing a function that was never
// registered is a no-op.
func (b *Bus) Off(event string, fn Handler) {
	if fn == nil {
		return
	}
	key := handlerKey(fn)

	b.mu.Lock()
	removed := removeByKey(b.listeners, event, key)
	removed = removeByKey(b.once, event, key) || removed
	active := b.activeListenersLocked()
	b.mu.Unlock()

	if removed {
		b.storeActiveListeners(active)
	}
}

// unsubscriber builds the capability returned from On and Once. It removes
// only the slot it was created for; calling it after the slot is gone
// (drained, Off, RemoveAllListeners) is a no-op.
func (b *Bus) unsubscriber(event, id string, once bool) func() {
	return func() {
		b.mu.Lock()
		set := b.listeners
		if once {
			set = b.once
		}
		removed := removeByID(set, event, id)
		active := b.activeListenersLocked()
		b.mu.Unlock()

		if removed {
			b.storeActiveListeners(active)
		}
	}
}

func removeByID(set map[string][]*entry, event, id string) bool {
	entries := set[event]
	for i, e := range entries {
		if e.id == id {
			set[event] = append(entries[:i], entries[i+1:]...)
			if len(set[event]) == 0 {
				delete(set, event)
			}
			return true
		}
	}
	return false
}

func removeByKey(set map[string][]*entry, event string, key uintptr) bool {
	entries := set[event]
	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if e.key == key {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return false
	}
	if len(kept) == 0 {
		delete(set, event)
	} else {
		set[event] = kept
	}
	return true
}

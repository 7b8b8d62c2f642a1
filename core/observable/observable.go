package observable

import "sync"

// Value is a mutable cell holding a single value of type T with change
// notifications and batched write transactions.
//
// The zero Value is not usable; create cells with New.
type Value[T any] struct {
	mu      sync.Mutex
	value   T
	subs    []subscriber[T]
	nextID  int
	depth   int // open transaction count
	pending bool
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// New creates a cell initialized with the given value.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
//
// Inside a transaction Get observes uncommitted writes made so far, which
// lets a sequence of dependent updates read their own effects.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the value. Outside a transaction subscribers are notified
// immediately; inside one, the write is folded into the pending commit.
func (v *Value[T]) Set(value T) {
	v.Update(func(T) T { return value })
}

// Update applies fn to the current value and stores the result. The
// notification behavior matches Set.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	v.value = fn(v.value)
	if v.depth > 0 {
		v.pending = true
		v.mu.Unlock()
		return
	}
	value, subs := v.value, v.snapshotSubsLocked()
	v.mu.Unlock()

	notify(subs, value)
}

// Batch runs fn inside a write transaction. All writes made during fn (on
// any goroutine that writes while the transaction is open) coalesce into at
// most one notification, delivered with the final value when the outermost
// batch exits. Nested calls join the enclosing transaction.
func (v *Value[T]) Batch(fn func()) {
	v.mu.Lock()
	v.depth++
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.depth--
		if v.depth > 0 || !v.pending {
			v.mu.Unlock()
			return
		}
		v.pending = false
		value, subs := v.value, v.snapshotSubsLocked()
		v.mu.Unlock()

		notify(subs, value)
	}()

	fn()
}

// Subscribe registers fn to receive committed values in registration order.
// The returned function removes the subscription; calling it more than once
// is a no-op.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, s := range v.subs {
			if s.id == id {
				v.subs = append(v.subs[:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

func (v *Value[T]) snapshotSubsLocked() []subscriber[T] {
	if len(v.subs) == 0 {
		return nil
	}
	return append([]subscriber[T](nil), v.subs...)
}

func notify[T any](subs []subscriber[T], value T) {
	for _, s := range subs {
		s.fn(value)
	}
}

// Derive creates a read-only cell whose value is fn applied to the source.
// It is recomputed on every source commit. The returned stop function
// detaches the derived cell from the source; the cell keeps its last value
// afterward.
func Derive[T, U any](src *Value[T], fn func(T) U) (*Value[U], func()) {
	derived := New(fn(src.Get()))
	stop := src.Subscribe(func(value T) {
		derived.Set(fn(value))
	})
	return derived, stop
}

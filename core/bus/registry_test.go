package bus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventbus/core/bus"
)

func discardHandler(context.Context, any) error { return nil }

func countingHandler(calls *int) bus.Handler {
	return func(context.Context, any) error {
		*calls++
		return nil
	}
}

func TestBus_On(t *testing.T) {
	t.Parallel()

	t.Run("nil handler is rejected", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		_, err := b.On("user.created", nil)
		assert.ErrorIs(t, err, bus.ErrInvalidListener)
	})

	t.Run("registers a persistent handler", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		handler := countingHandler(&calls)

		_, err := b.On("user.created", handler)
		require.NoError(t, err)
		require.Equal(t, 1, b.ListenerCount("user.created"))

		b.Emit(context.Background(), "user.created", nil)
		b.Emit(context.Background(), "user.created", nil)
		assert.Equal(t, 2, calls)
	})

	t.Run("same function registered twice occupies one slot", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		_, err := b.On("tick", discardHandler)
		require.NoError(t, err)
		_, err = b.On("tick", discardHandler)
		require.NoError(t, err)

		assert.Equal(t, 1, b.ListenerCount("tick"))
	})

	t.Run("distinct closures from one literal occupy separate slots", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := make([]int, 3)
		for i := range calls {
			i := i
			_, err := b.On("tick", func(context.Context, any) error {
				calls[i]++
				return nil
			})
			require.NoError(t, err)
		}
		require.Equal(t, 3, b.ListenerCount("tick"))

		b.Emit(context.Background(), "tick", nil)
		assert.Equal(t, []int{1, 1, 1}, calls)
	})

	t.Run("same variable keeps matching itself across calls", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		handler := countingHandler(&calls)

		unsub, err := b.On("tick", handler)
		require.NoError(t, err)
		_, err = b.On("tick", handler)
		require.NoError(t, err)
		require.Equal(t, 1, b.ListenerCount("tick"))

		unsub()
		assert.Zero(t, b.ListenerCount("tick"))
	})

	t.Run("unsubscribe prevents any further invocation", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		unsub, err := b.On("tick", countingHandler(&calls))
		require.NoError(t, err)

		unsub()
		b.Emit(context.Background(), "tick", nil)

		assert.Zero(t, calls)
		assert.Zero(t, b.ListenerCount("tick"))
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		unsub, err := b.On("tick", discardHandler)
		require.NoError(t, err)

		unsub()
		assert.NotPanics(t, unsub)
		assert.Zero(t, b.ListenerCount("tick"))
	})

	t.Run("filter option gates delivery", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		var seen []any
		_, err := b.On("num", func(_ context.Context, payload any) error {
			seen = append(seen, payload)
			return nil
		}, bus.WithFilter(func(payload any) bool {
			return payload.(int)%2 == 0
		}))
		require.NoError(t, err)

		for i := 1; i <= 4; i++ {
			b.Emit(context.Background(), "num", i)
		}
		assert.Equal(t, []any{2, 4}, seen)
	})
}

func TestBus_Once(t *testing.T) {
	t.Parallel()

	t.Run("nil handler is rejected", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		_, err := b.Once("tick", nil)
		assert.ErrorIs(t, err, bus.ErrInvalidListener)
	})

	t.Run("fires exactly once across two emissions", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		_, err := b.Once("tick", countingHandler(&calls))
		require.NoError(t, err)

		b.Emit(context.Background(), "tick", nil)
		b.Emit(context.Background(), "tick", nil)

		assert.Equal(t, 1, calls)
		assert.Zero(t, b.ListenerCount("tick"))
	})

	t.Run("same function may hold one persistent and one one-shot slot", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		handler := countingHandler(&calls)

		_, err := b.On("tick", handler)
		require.NoError(t, err)
		_, err = b.Once("tick", handler)
		require.NoError(t, err)

		require.Equal(t, 2, b.ListenerCount("tick"))

		b.Emit(context.Background(), "tick", nil)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, b.ListenerCount("tick"))
	})

	t.Run("capability removes the slot before it fires", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		unsub, err := b.Once("tick", countingHandler(&calls))
		require.NoError(t, err)

		unsub()
		b.Emit(context.Background(), "tick", nil)
		assert.Zero(t, calls)
	})

	t.Run("one-shot with rejecting filter is still consumed", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		_, err := b.Once("tick", countingHandler(&calls), bus.WithFilter(func(any) bool {
			return false
		}))
		require.NoError(t, err)

		b.Emit(context.Background(), "tick", nil)
		assert.Zero(t, calls)
		assert.Zero(t, b.ListenerCount("tick"))
	})
}

func TestBus_Off(t *testing.T) {
	t.Parallel()

	t.Run("removes persistent and one-shot slots by identity", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		calls := 0
		handler := countingHandler(&calls)

		_, err := b.On("tick", handler)
		require.NoError(t, err)
		_, err = b.Once("tick", handler)
		require.NoError(t, err)
		require.Equal(t, 2, b.ListenerCount("tick"))

		b.Off("tick", handler)
		assert.Zero(t, b.ListenerCount("tick"))

		b.Emit(context.Background(), "tick", nil)
		assert.Zero(t, calls)
	})

	t.Run("unregistered function is a no-op", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		assert.NotPanics(t, func() { b.Off("tick", discardHandler) })
		assert.NotPanics(t, func() { b.Off("tick", nil) })
	})

	t.Run("leaves other subscriptions intact", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		keptCalls := 0
		kept := countingHandler(&keptCalls)
		_, err := b.On("tick", kept)
		require.NoError(t, err)
		_, err = b.On("tick", discardHandler)
		require.NoError(t, err)

		b.Off("tick", discardHandler)
		require.Equal(t, 1, b.ListenerCount("tick"))

		b.Emit(context.Background(), "tick", nil)
		assert.Equal(t, 1, keptCalls)
	})
}

func TestBus_RemoveAllListeners(t *testing.T) {
	t.Parallel()

	t.Run("clears one event only", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		_, err := b.On("a", discardHandler)
		require.NoError(t, err)
		_, err = b.Once("b", discardHandler)
		require.NoError(t, err)

		b.RemoveAllListeners("a")

		assert.Zero(t, b.ListenerCount("a"))
		assert.Equal(t, 1, b.ListenerCount("b"))
	})

	t.Run("clears everything without arguments", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		_, err := b.On("a", discardHandler)
		require.NoError(t, err)
		_, err = b.Once("b", discardHandler)
		require.NoError(t, err)

		b.RemoveAllListeners()

		assert.Empty(t, b.EventNames())
		assert.Zero(t, b.Metrics().State().ActiveListeners)
	})
}

func TestBus_EventNames(t *testing.T) {
	t.Parallel()

	t.Run("union of persistent and one-shot events, sorted", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		_, err := b.On("charlie", discardHandler)
		require.NoError(t, err)
		_, err = b.Once("alpha", discardHandler)
		require.NoError(t, err)
		_, err = b.On("bravo", discardHandler)
		require.NoError(t, err)
		_, err = b.Once("bravo", discardHandler)
		require.NoError(t, err)

		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, b.EventNames())
	})

	t.Run("empty bus has no names", func(t *testing.T) {
		t.Parallel()

		b := bus.New()
		assert.Empty(t, b.EventNames())
		assert.False(t, b.HasListeners("anything"))
	})
}

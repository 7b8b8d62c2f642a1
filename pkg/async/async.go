package async

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async operation timed out")

	// ErrNoFutures is returned when WaitAny is called with no futures.
	ErrNoFutures = errors.New("no futures provided")
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	value U
	err   error
	done  chan struct{}
}

// Await blocks until the computation completes and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits for the computation to complete with a timeout.
// If the timeout elapses first, it returns the zero value and ErrTimeout;
// the computation itself keeps running.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes fn in a new goroutine and returns a Future for its result.
// The function accepts a context and a parameter of any type T.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Skip the call entirely when the context is already canceled.
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.value, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for all futures to complete and returns their results in
// order. The first error encountered is returned alongside the partial
// results collected so far.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, 0, len(futures))
	for _, future := range futures {
		value, err := future.Await()
		if err != nil {
			return results, err
		}
		results = append(results, value)
	}
	return results, nil
}

// WaitAny waits for any of the futures to complete and returns the index of
// the completed future, its value, and any error it produced.
// Note: This function spawns one goroutine per future. All goroutines will
// complete naturally when their respective futures finish.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	var zero U
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	type result struct {
		index int
		value U
		err   error
	}
	done := make(chan result, 1)

	for i, future := range futures {
		go func(index int, f *Future[U]) {
			value, err := f.Await()
			select {
			case done <- result{index, value, err}:
			default:
			}
		}(i, future)
	}

	res := <-done
	return res.index, res.value, res.err
}

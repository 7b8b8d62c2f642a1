package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/eventbus/pkg/async"
)

// WaitFor blocks until the event is emitted and returns its processed
// payload. A positive timeout bounds the wait; when it elapses first, the
// one-shot subscription is removed and the call fails with ErrWaitTimeout
// naming the event. A zero timeout falls back to the bus default
// (WithDefaultWaitTimeout), which itself defaults to waiting indefinitely.
//
// The subscription and the timer are mutually cancelling: whichever fires
// first disarms the other. The wait also ends when ctx is canceled or the
// bus is destroyed (ErrBusClosed).
func (b *Bus) WaitFor(ctx context.Context, event string, timeout time.Duration) (any, error) {
	payloadCh := make(chan any, 1)
	unsub, err := b.subscribeInternal(event, func(_ context.Context, payload any) error {
		select {
		case payloadCh <- payload:
		default:
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	defer unsub()

	if timeout == 0 {
		timeout = b.defaultWaitTimeout
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case payload := <-payloadCh:
		return payload, nil
	case <-expired:
		return nil, fmt.Errorf("%w: %q after %s", ErrWaitTimeout, event, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.done:
		return nil, ErrBusClosed
	}
}

// WaitForAsync is the promise-style variant of WaitFor: it returns
// immediately with a future that resolves to the awaited payload or
// rejects with the same errors WaitFor produces.
func (b *Bus) WaitForAsync(ctx context.Context, event string, timeout time.Duration) *async.Future[any] {
	return async.Async(ctx, event, func(ctx context.Context, event string) (any, error) {
		return b.WaitFor(ctx, event, timeout)
	})
}

package bus

import "context"

// Pipe forwards every emission of fromEvent on this bus to target,
// re-emitting under toEvent (or the source name when toEvent is empty).
// The payload crosses unchanged: the source bus's middleware has already
// run by the time the forwarding subscription sees it, and the target
// bus's own middleware chain applies on re-emission.
//
// The returned unpipe capability removes only the forwarding subscription.
// Returns ErrInvalidTarget for a nil target and ErrBusClosed on a
// destroyed source bus.
func (b *Bus) Pipe(fromEvent string, target *Bus, toEvent string) (func(), error) {
	if target == nil {
		return nil, ErrInvalidTarget
	}
	if toEvent == "" {
		toEvent = fromEvent
	}

	return b.subscribeInternal(fromEvent, func(ctx context.Context, payload any) error {
		target.Emit(ctx, toEvent, payload)
		return nil
	}, false)
}

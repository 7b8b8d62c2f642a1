package bus

import "errors"

var (
	// ErrInvalidListener is returned when a nil handler is passed to On or Once.
	ErrInvalidListener = errors.New("listener must not be nil")

	// ErrInvalidMiddleware is returned when a nil middleware is passed to Use.
	ErrInvalidMiddleware = errors.New("middleware must not be nil")

	// ErrInvalidTarget is returned when Pipe is given a nil target bus.
	ErrInvalidTarget = errors.New("target bus must not be nil")

	// ErrWaitTimeout is returned by WaitFor when the deadline elapses before
	// the awaited event is emitted.
	ErrWaitTimeout = errors.New("timed out waiting for event")

	// ErrBusClosed is returned for subscribe-like operations on a destroyed
	// bus, and by pending WaitFor calls when the bus is destroyed under them.
	ErrBusClosed = errors.New("event bus is destroyed")
)

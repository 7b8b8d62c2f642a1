package bus

import (
	"log/slog"
	"time"
)

// Option configures a Bus during construction.
type Option func(*Bus)

// WithErrorHandler routes isolated handler and middleware failures to fn
// instead of the diagnostic logger. The emission itself never fails because
// of a handler error.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(b *Bus) {
		if fn != nil {
			b.errorHandler = fn
		}
	}
}

// WithMetrics enables or disables the derived metrics aggregates and metric
// change notifications. Counters are maintained either way; disabling only
// turns off the observer side of the metrics facet. Enabled by default.
func WithMetrics(enabled bool) Option {
	return func(b *Bus) {
		b.metricsEnabled = enabled
	}
}

// WithLogger configures structured logging for dispatch diagnostics.
// Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.log = logger
		}
	}
}

// WithDefaultWaitTimeout sets the timeout applied by WaitFor calls that
// pass zero. Zero (the default) means such calls wait indefinitely.
func WithDefaultWaitTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.defaultWaitTimeout = d
		}
	}
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*entry)

// WithFilter attaches a delivery predicate to the subscription: the handler
// runs only for payloads the predicate accepts. Filtering happens at
// invocation time, after one-shot draining, so a one-shot subscription
// whose filter rejects the payload is still consumed.
func WithFilter(fn func(payload any) bool) SubscribeOption {
	return func(e *entry) {
		if fn != nil {
			e.filter = fn
		}
	}
}

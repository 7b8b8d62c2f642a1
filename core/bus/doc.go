// Package bus provides an in-process publish/subscribe dispatcher with
// named events, payload-transforming middleware, one-shot subscriptions,
// promise-style waiting, cross-bus forwarding, and reactive usage metrics.
//
// Each Bus is an independent unit with its own registries, middleware
// chains, and metrics; there is no process-wide instance. Emission is
// synchronous: Emit runs the middleware chain and every matching handler
// to completion in the calling goroutine.
//
// # Basic Usage
//
//	b := bus.New()
//	defer b.Destroy()
//
//	unsub, err := b.On("user.created", func(ctx context.Context, payload any) error {
//		user := payload.(User)
//		return sendWelcomeEmail(ctx, user)
//	})
//	if err != nil {
//		return err
//	}
//	defer unsub()
//
//	b.Emit(ctx, "user.created", User{Email: "user@example.com"})
//
// # Middleware
//
// Middleware transforms payloads before handlers see them. The "*" channel
// runs ahead of event-specific middleware for every emission:
//
//	b.Use(bus.Wildcard, func(ctx context.Context, event string, payload any) (any, error) {
//		return enrich(payload), nil
//	})
//	b.Use("user.created", validateUser)
//
// A failing middleware never aborts delivery: the error is isolated and
// the chain continues with the unchanged payload.
//
// # Error Isolation
//
// A handler error or panic is counted in the metrics, routed to the
// configured error handler (WithErrorHandler) or logged, and does not
// prevent subsequent handlers from running. Emit never fails because of a
// handler.
//
// # One-Shot Subscriptions and Waiting
//
//	b.Once("ready", handleFirstReady)
//
//	payload, err := b.WaitFor(ctx, "ready", 5*time.Second)
//	if errors.Is(err, bus.ErrWaitTimeout) {
//		// "ready" was not emitted in time
//	}
//
// WaitForAsync returns a future instead of blocking.
//
// # Streams
//
// A Stream keeps the latest payload and a running count for one event as
// a reactive cell:
//
//	s := b.Stream("tick")
//	defer s.Destroy()
//	stop := s.Observe(func(st bus.StreamState) {
//		fmt.Println(st.Count, st.Value)
//	})
//	defer stop()
//
// # Piping
//
// Pipe forwards emissions to another bus, subject to the target's own
// middleware:
//
//	unpipe, _ := source.Pipe("order.placed", billing, "")
//	defer unpipe()
//
// # Metrics
//
// The metrics facet exposes dispatch counters committed once per emission,
// plus derived aggregates:
//
//	m := b.Metrics()
//	fmt.Println(m.State().TotalEventsEmitted, m.TotalListeners())
//	stop := m.Subscribe(func(s bus.Metrics) { ... })
//	defer stop()
package bus

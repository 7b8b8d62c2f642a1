package bus

// Metrics is the bus's dispatch counter record. It is held in a reactive
// cell and mutated only inside the dispatch engine's per-emission
// transaction (plus listener-total recomputes on registry mutations).
type Metrics struct {
	TotalEventsEmitted int64
	LastEmittedEvent   string
	ActiveListeners    int
	ErrorCount         int64
}

// MetricsFacet is a read-only view over the bus's metrics cell plus
// derived aggregates. Obtain one with Bus.Metrics.
type MetricsFacet struct {
	bus *Bus
}

// Metrics returns the read-only metrics facet for the bus.
func (b *Bus) Metrics() *MetricsFacet {
	return &MetricsFacet{bus: b}
}

// State returns a snapshot of the current counters.
func (f *MetricsFacet) State() Metrics {
	return f.bus.metrics.Get()
}

// Events returns the event names that currently have subscriptions.
func (f *MetricsFacet) Events() []string {
	return f.bus.EventNames()
}

// TotalListeners returns the total subscription count across all events.
func (f *MetricsFacet) TotalListeners() int {
	f.bus.mu.Lock()
	defer f.bus.mu.Unlock()
	return f.bus.activeListenersLocked()
}

// Subscribe registers an observer of committed metrics states: one
// notification per emission, after the transaction closes. When the bus
// was constructed with WithMetrics(false) the observer side is off and
// Subscribe returns a no-op unsubscribe.
func (f *MetricsFacet) Subscribe(fn func(Metrics)) func() {
	if !f.bus.metricsEnabled || fn == nil {
		return func() {}
	}
	return f.bus.metrics.Subscribe(fn)
}

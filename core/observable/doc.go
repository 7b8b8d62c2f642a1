// Package observable provides a mutable reactive cell with explicit write
// transactions and change notifications.
//
// A Value[T] holds a single value of any type. Writes outside a transaction
// notify subscribers immediately; writes grouped inside Batch coalesce into
// at most one notification carrying the final committed value. This gives
// observers a consistent post-commit view instead of a torn intermediate one.
//
// # Basic Usage
//
//	cell := observable.New(Counters{})
//
//	stop := cell.Subscribe(func(c Counters) {
//		fmt.Println("committed:", c)
//	})
//	defer stop()
//
//	cell.Update(func(c Counters) Counters {
//		c.Total++
//		return c
//	})
//
// # Transactions
//
// Batch opens a write transaction. Any number of Set or Update calls inside
// the function body produce a single notification when the outermost batch
// exits:
//
//	cell.Batch(func() {
//		cell.Update(incrementTotal)
//		cell.Update(setLastSeen)
//	})
//	// subscribers observed exactly one change
//
// Nested batches join the enclosing transaction, so code that batches its
// own writes composes safely with callers that already opened one.
//
// # Derived Values
//
// Derive builds a read-only computed view that is recomputed whenever the
// source commits:
//
//	total, stop := observable.Derive(cell, func(c Counters) int64 {
//		return c.Total
//	})
//	defer stop()
//
// # Concurrency
//
// All methods are safe for concurrent use. Subscriber callbacks run outside
// internal locks and receive a snapshot of the committed value, so they may
// read the cell or start another transaction without deadlocking. Callbacks
// are invoked synchronously on the committing goroutine; keep them short.
package observable

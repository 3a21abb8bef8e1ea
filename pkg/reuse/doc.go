// Package reuse implements a concurrent, initializer-keyed object pool for
// expensive reusable resources such as live database connections or parsed
// buffers. Instead of constructing and destroying an instance per use, call
// sites check instances out of the pool and hand them back for recycling.
//
// Architecture
//
// The pool partitions idle instances into per-key LIFO buckets, one bucket
// per initializer key plus a default bucket for the empty key. Two instances
// with equal keys are interchangeable; instances with different keys are
// never substituted for each other. LIFO hand-out favors warm instances.
//
// Core Types:
//
//   - Reusable: the capability contract a poolable type must satisfy
//   - Pool[T]: the pool manager, generic over one concrete Reusable type
//   - Lease[T]: the scoped checkout handle returned by Pool.Checkout
//
// Check-in and Cleaning
//
// Every instance is reset before it re-enters a bucket. Types report through
// ResetInBackground whether their Reset is expensive; cheap resets run
// synchronously inside Put, expensive ones are queued for a single dedicated
// cleaning worker so the releasing caller never waits. Both paths converge
// on the same restocked state.
//
// Capacity and Shutdown
//
// Neither checkout nor check-in ever blocks on pool occupancy. A checkout
// miss constructs a fresh instance through the caller-supplied factory; a
// check-in that finds the inventory or the cleaning queue at capacity drops
// the instance instead. Close stops the worker, then destroys everything
// still held in buckets or queued for cleaning. Instances implementing
// io.Closer are closed as they are destroyed.
//
// Usage
//
//	pool := reuse.NewPool(openSession, config.DefaultPoolConfig("sessions"), nil)
//	defer pool.Close()
//
//	lease, err := pool.Checkout(dsn)
//	if err != nil {
//	    return err
//	}
//	defer lease.Release()
//
//	rows, err := lease.Value().Query(ctx, "SELECT ...")
package reuse

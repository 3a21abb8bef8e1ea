package reuse

import "io"

// Reusable is the contract a type must satisfy to be managed by a Pool.
// It is a compile-time constraint rather than a base class: all instances
// in one pool share a single concrete type, and the pool never substitutes
// between concrete types.
type Reusable interface {
	// Reset restores the instance to a reusable baseline state. The pool
	// calls Reset exactly once between a check-in and the next hand-out of
	// the same instance. If Reset returns an error the pool drops the
	// instance instead of restocking it.
	Reset() error

	// ResetInBackground reports whether Reset is expensive enough to be
	// deferred to the pool's background cleaning worker. When false, Reset
	// runs synchronously inside Put before the instance is restocked.
	ResetInBackground() bool

	// Key returns the immutable initializer key assigned at construction,
	// such as a database connection string. Instances with equal keys are
	// interchangeable; instances with different keys are never substituted
	// for each other. An empty key routes to the pool's default bucket.
	Key() string
}

// Factory constructs a new instance for the given initializer key. It is
// invoked by the pool exactly on a bucket miss. Errors are propagated
// verbatim to the checkout caller; the pool performs no retry.
type Factory[T Reusable] func(key string) (T, error)

// destroy releases an instance that is leaving the pool for good. Types
// that hold external resources implement io.Closer and are closed here;
// everything else is simply left to the garbage collector.
func destroy[T Reusable](t T) {
	if c, ok := any(t).(io.Closer); ok {
		_ = c.Close()
	}
}

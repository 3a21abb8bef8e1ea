package reuse

// Lease is the scoped loan of one pooled instance to a caller. It is
// created by Pool.Checkout and owns the instance exclusively until Release
// hands it back, so the pool never aliases a checked-out instance.
//
// Typical usage:
//
//	lease, err := pool.Checkout("postgres://localhost/app")
//	if err != nil {
//	    return err
//	}
//	defer lease.Release()
//
//	doWork(lease.Value())
//
// A Lease is not safe for concurrent use by multiple goroutines.
type Lease[T Reusable] struct {
	pool *Pool[T]
	obj  T
	held bool
}

// Value returns the leased instance. The caller has exclusive mutable
// access until Release. Calling Value after Release or Move returns the
// zero value.
func (l *Lease[T]) Value() T {
	return l.obj
}

// Release returns the instance to the pool. Only the first call hands the
// instance back; the lease clears its reference so a double release is
// impossible. Safe to call on all exit paths, including after Move.
func (l *Lease[T]) Release() {
	if !l.held {
		return
	}
	t := l.obj
	var zero T
	l.obj = zero
	l.held = false
	l.pool.Put(t)
}

// Move transfers ownership of the instance to a new lease without an
// intervening Put/Get round trip. The receiver is emptied: its Value
// returns the zero value and its Release becomes a no-op. Moving an
// already-released lease yields an empty lease.
func (l *Lease[T]) Move() *Lease[T] {
	next := &Lease[T]{pool: l.pool, obj: l.obj, held: l.held}
	var zero T
	l.obj = zero
	l.held = false
	return next
}

package reuse

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/reuse/pkg/config"
	"github.com/ajitpratap0/reuse/pkg/logger"
)

// Pool is a concurrent, initializer-keyed object pool. Idle instances are
// kept in per-key LIFO buckets (plus one default bucket for the empty key)
// so that the most recently returned instance is handed out first. A single
// background worker drains the cleaning queue for types whose Reset is too
// expensive to run inline on check-in.
//
// Checkout never blocks waiting for availability: on a bucket miss the pool
// invokes the caller-supplied factory and hands the fresh instance out.
// Check-in never blocks waiting for space: when the inventory or the
// cleaning queue is at capacity the instance is dropped instead.
//
// The pool is safe for use by arbitrarily many goroutines.
type Pool[T Reusable] struct {
	factory      Factory[T]
	maxInventory int
	logger       *zap.Logger

	// runMu guards running. Taking the read lock across a bucket push or a
	// cleaning-queue send guarantees that nothing enters the pool after
	// Close has flipped the flag and started draining.
	runMu   sync.RWMutex
	running bool

	mu            sync.Mutex
	defaultBucket []T
	buckets       map[string][]T
	size          int64 // atomic; total idle instances across all buckets

	incoming chan T
	stopCh   chan struct{}
	workerWG sync.WaitGroup
	closed   sync.Once

	stats struct {
		hits          int64
		misses        int64
		resetFailures int64
		destroyed     int64
	}
}

// PoolStats is a point-in-time snapshot of pool counters. Size and Pending
// are approximate under concurrency.
type PoolStats struct {
	// Size is the total idle inventory across all buckets.
	Size int `json:"size"`
	// Pending is the number of instances queued for background cleaning.
	Pending int `json:"pending"`
	// Hits counts checkouts served from a bucket.
	Hits int64 `json:"hits"`
	// Misses counts checkouts that constructed a fresh instance.
	Misses int64 `json:"misses"`
	// ResetFailures counts instances dropped because Reset returned an error.
	ResetFailures int64 `json:"reset_failures"`
	// Destroyed counts instances dropped for any reason (capacity, failed
	// reset, shutdown).
	Destroyed int64 `json:"destroyed"`
}

// NewPool creates a pool that constructs instances with factory. Zero or
// negative capacity values in cfg fall back to the defaults (1000 idle
// instances, 1000 pending background resets). A nil log uses the global
// logger. The background cleaning worker is started immediately; callers
// must Close the pool to stop it and destroy remaining inventory.
func NewPool[T Reusable](factory Factory[T], cfg config.PoolConfig, log *zap.Logger) *Pool[T] {
	if cfg.MaxInventory <= 0 {
		cfg.MaxInventory = config.DefaultMaxInventory
	}
	if cfg.MaxToClean <= 0 {
		cfg.MaxToClean = config.DefaultMaxToClean
	}
	if log == nil {
		log = logger.Get()
	}

	p := &Pool[T]{
		factory:      factory,
		maxInventory: cfg.MaxInventory,
		buckets:      make(map[string][]T),
		incoming:     make(chan T, cfg.MaxToClean),
		stopCh:       make(chan struct{}),
		running:      true,
		logger: log.With(
			zap.String("component", "reuse_pool"),
			zap.String("pool", cfg.Name)),
	}

	p.workerWG.Add(1)
	go p.cleanLoop()

	return p
}

// Get returns an instance for the given initializer key. On a bucket hit the
// instance was already reset at check-in and is handed out as-is. On a miss,
// and always after Close, the factory is invoked; factory errors propagate
// to the caller unmodified and are never retried.
func (p *Pool[T]) Get(key string) (T, error) {
	if p.isRunning() {
		if t, ok := p.takeIdle(key); ok {
			atomic.AddInt64(&p.stats.hits, 1)
			return t, nil
		}
	}
	atomic.AddInt64(&p.stats.misses, 1)
	return p.factory(key)
}

// Put hands an instance back to the pool for reuse. A nil instance is a
// no-op. Instances that prefer background reset are queued for the cleaning
// worker; everything else is reset inline and restocked. The instance is
// dropped when the pool is shutting down, when a capacity bound is reached,
// or when Reset fails.
func (p *Pool[T]) Put(t T) {
	if isNil(t) {
		return
	}
	if !p.isRunning() {
		p.drop(t)
		return
	}

	if t.ResetInBackground() {
		p.enqueueClean(t)
		return
	}

	// Reset outside any lock so a slow reset never stalls other callers.
	if err := t.Reset(); err != nil {
		p.dropFailedReset(t, err)
		return
	}
	p.restock(t)
}

// Checkout performs Get and wraps the instance in a Lease that returns it
// to the pool exactly once on Release. An empty key uses the default bucket.
func (p *Pool[T]) Checkout(key string) (*Lease[T], error) {
	t, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	return &Lease[T]{pool: p, obj: t, held: true}, nil
}

// Size returns the current total idle inventory across all buckets. The
// value is read without taking the bucket lock and is approximate while
// checkouts and check-ins are in flight.
func (p *Pool[T]) Size() int {
	return int(atomic.LoadInt64(&p.size))
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Size:          p.Size(),
		Pending:       len(p.incoming),
		Hits:          atomic.LoadInt64(&p.stats.hits),
		Misses:        atomic.LoadInt64(&p.stats.misses),
		ResetFailures: atomic.LoadInt64(&p.stats.resetFailures),
		Destroyed:     atomic.LoadInt64(&p.stats.destroyed),
	}
}

// Close shuts the pool down: no instance is restocked after it returns.
// It stops accepting check-ins into inventory, joins the cleaning worker,
// then destroys every instance remaining in the buckets and the cleaning
// queue. Close is idempotent. Get continues to work after Close by
// constructing fresh instances; Put destroys everything handed to it.
func (p *Pool[T]) Close() {
	p.closed.Do(func() {
		p.runMu.Lock()
		p.running = false
		p.runMu.Unlock()

		close(p.stopCh)
		p.workerWG.Wait()

		destroyed := p.drain()
		p.logger.Debug("pool closed", zap.Int("destroyed", destroyed))
	})
}

func (p *Pool[T]) isRunning() bool {
	p.runMu.RLock()
	defer p.runMu.RUnlock()
	return p.running
}

// takeIdle pops the most recently restocked instance for key, if any.
func (p *Pool[T]) takeIdle(key string) (T, bool) {
	var zero T

	p.mu.Lock()
	defer p.mu.Unlock()

	stack := p.defaultBucket
	if key != "" {
		stack = p.buckets[key]
	}
	n := len(stack)
	if n == 0 {
		return zero, false
	}

	t := stack[n-1]
	stack[n-1] = zero // release the reference so the instance is never aliased
	if key == "" {
		p.defaultBucket = stack[:n-1]
	} else {
		p.buckets[key] = stack[:n-1]
	}
	atomic.AddInt64(&p.size, -1)
	return t, true
}

// enqueueClean hands an instance to the background worker, dropping it when
// the cleaning queue is full. The running re-check under the read lock keeps
// the send ordered before Close's drain.
func (p *Pool[T]) enqueueClean(t T) {
	queued := false
	p.runMu.RLock()
	if p.running {
		select {
		case p.incoming <- t:
			queued = true
		default:
		}
	}
	p.runMu.RUnlock()

	if !queued {
		p.drop(t)
	}
}

// restock pushes a freshly reset instance onto its keyed bucket, dropping it
// instead when the pool is shutting down or the inventory is at capacity.
// The capacity check against the atomic counter is optimistic: a race may
// transiently admit one instance over the soft limit. Destruction happens
// outside both locks.
func (p *Pool[T]) restock(t T) {
	stocked := false
	p.runMu.RLock()
	if p.running {
		p.mu.Lock()
		if atomic.LoadInt64(&p.size) < int64(p.maxInventory) {
			if key := t.Key(); key == "" {
				p.defaultBucket = append(p.defaultBucket, t)
			} else {
				p.buckets[key] = append(p.buckets[key], t)
			}
			atomic.AddInt64(&p.size, 1)
			stocked = true
		}
		p.mu.Unlock()
	}
	p.runMu.RUnlock()

	if !stocked {
		p.drop(t)
	}
}

// cleanLoop is the background cleaning worker: a single goroutine per pool
// that resets queued instances and restocks them. It exits when Close
// signals the stop channel; anything still queued at that point is
// destroyed by drain.
func (p *Pool[T]) cleanLoop() {
	defer p.workerWG.Done()
	for {
		select {
		case t := <-p.incoming:
			if err := t.Reset(); err != nil {
				p.dropFailedReset(t, err)
				continue
			}
			p.restock(t)
		case <-p.stopCh:
			return
		}
	}
}

// drain destroys every instance left in the buckets and the cleaning queue.
// Called only after the worker has been joined.
func (p *Pool[T]) drain() int {
	p.mu.Lock()
	idle := p.defaultBucket
	keyed := p.buckets
	p.defaultBucket = nil
	p.buckets = make(map[string][]T)
	atomic.StoreInt64(&p.size, 0)
	p.mu.Unlock()

	destroyed := 0
	for _, t := range idle {
		p.drop(t)
		destroyed++
	}
	for _, stack := range keyed {
		for _, t := range stack {
			p.drop(t)
			destroyed++
		}
	}
	for {
		select {
		case t := <-p.incoming:
			p.drop(t)
			destroyed++
		default:
			return destroyed
		}
	}
}

// drop destroys an instance that is leaving the pool for good.
func (p *Pool[T]) drop(t T) {
	destroy(t)
	atomic.AddInt64(&p.stats.destroyed, 1)
}

// dropFailedReset contains a reset failure at the pool boundary: the
// instance is dropped and the failure is surfaced through the log and the
// reset-failure counter rather than propagated to the caller or allowed to
// kill the cleaning worker.
func (p *Pool[T]) dropFailedReset(t T, err error) {
	atomic.AddInt64(&p.stats.resetFailures, 1)
	p.logger.Warn("dropping instance after failed reset",
		zap.String("key", t.Key()),
		zap.Error(err))
	p.drop(t)
}

// isNil reports whether a checked-in instance carries no value, e.g. a
// typed nil pointer handed to Put.
func isNil[T Reusable](t T) bool {
	v := reflect.ValueOf(any(t))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

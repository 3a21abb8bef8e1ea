// Package bench implements the benchmark harness that exercises a session
// pool under load. It compares the traditional connect/query/close cycle
// against pooled checkouts over repeated runs, optionally from many
// concurrent workers.
package bench

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/reuse/pkg/config"
	"github.com/ajitpratap0/reuse/pkg/db"
	"github.com/ajitpratap0/reuse/pkg/errors"
	"github.com/ajitpratap0/reuse/pkg/reuse"
)

// RunResult holds the timings for one traditional-versus-pooled comparison.
type RunResult struct {
	Run         int           `json:"run"`
	Traditional time.Duration `json:"traditional_ns"`
	Pooled      time.Duration `json:"pooled_ns"`
	// Speedup is the traditional duration divided by the pooled duration.
	Speedup float64 `json:"speedup"`
}

// Report is the full output of a harness execution.
type Report struct {
	Config    config.BenchConfig `json:"config"`
	StartedAt time.Time          `json:"started_at"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Results   []RunResult        `json:"results"`
	// PoolStats is the pool counter snapshot taken after the final run,
	// before the pool is closed.
	PoolStats reuse.PoolStats `json:"pool_stats"`
}

// Harness runs the pooled-versus-traditional comparison. It owns the
// session pool, which lives across all runs so later runs measure a warm
// pool, matching the original profiling harness.
type Harness struct {
	cfg    config.BenchConfig
	logger *zap.Logger
	pool   *reuse.Pool[*db.Session]
}

// New creates a harness for the given configuration and starts its session
// pool. Callers must Close the harness to drain the pool.
func New(cfg config.BenchConfig, log *zap.Logger) *Harness {
	log = log.With(zap.String("component", "bench"))
	return &Harness{
		cfg:    cfg,
		logger: log,
		pool:   reuse.NewPool(db.Factory(context.Background()), cfg.Pool, log),
	}
}

// Pool exposes the session pool under test, e.g. for metrics registration.
func (h *Harness) Pool() *reuse.Pool[*db.Session] {
	return h.pool
}

// Close shuts the session pool down, destroying all idle sessions.
func (h *Harness) Close() {
	h.pool.Close()
}

// Run executes the configured number of comparison runs and returns the
// report.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	if err := h.cfg.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Config:    h.cfg,
		StartedAt: time.Now(),
		Results:   make([]RunResult, 0, h.cfg.Runs),
	}

	pool := h.pool

	for run := 1; run <= h.cfg.Runs; run++ {
		traditional, err := h.timePhase(ctx, h.traditionalIteration)
		if err != nil {
			return nil, err
		}

		pooled, err := h.timePhase(ctx, func(ctx context.Context) error {
			return h.pooledIteration(ctx, pool)
		})
		if err != nil {
			return nil, err
		}

		result := RunResult{
			Run:         run,
			Traditional: traditional,
			Pooled:      pooled,
		}
		if pooled > 0 {
			result.Speedup = float64(traditional) / float64(pooled)
		}
		report.Results = append(report.Results, result)

		h.logger.Info("run complete",
			zap.Int("run", run),
			zap.Duration("traditional", traditional),
			zap.Duration("pooled", pooled),
			zap.Float64("speedup", result.Speedup),
			zap.Int("pool_size", pool.Size()))
	}

	report.PoolStats = pool.Stats()
	report.Elapsed = time.Since(report.StartedAt)
	return report, nil
}

// timePhase spreads the configured iterations across the configured workers
// and measures wall time for the whole phase. The first worker error stops
// nothing but is reported; iteration counts stay fixed so timings remain
// comparable between phases.
func (h *Harness) timePhase(ctx context.Context, iteration func(context.Context) error) (time.Duration, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	perWorker := h.cfg.Iterations / h.cfg.Workers
	remainder := h.cfg.Iterations % h.cfg.Workers

	start := time.Now()
	for w := 0; w < h.cfg.Workers; w++ {
		n := perWorker
		if w < remainder {
			n++
		}
		if n == 0 {
			continue
		}

		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if err := iteration(ctx); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}(n)
	}
	wg.Wait()

	return time.Since(start), firstErr
}

// traditionalIteration is the baseline: open a session, run the query,
// close the session.
func (h *Harness) traditionalIteration(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	session, err := db.Open(ctx, h.cfg.DSN)
	if err != nil {
		return err
	}
	defer session.Close() //nolint:errcheck

	_, err = session.Query(ctx, h.cfg.Query)
	return err
}

// pooledIteration checks a session out of the pool, runs the query, and
// releases the session for recycling.
func (h *Harness) pooledIteration(ctx context.Context, pool *reuse.Pool[*db.Session]) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	lease, err := pool.Checkout(h.cfg.DSN)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "checkout failed")
	}
	defer lease.Release()

	_, err = lease.Value().Query(ctx, h.cfg.Query)
	return err
}

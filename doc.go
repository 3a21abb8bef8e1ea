// Package reuse provides a concurrent, initializer-keyed object pool that
// amortizes the cost of constructing expensive, reusable resources such as
// live database connections or parsed buffers.
//
// # Architecture
//
// The repository is organized around one core package and a set of
// collaborators that exercise it:
//
//   - pkg/reuse: the pool manager, capability contract, and checkout lease
//   - pkg/db: a minimal PostgreSQL session wrapper used as pooled cargo
//   - internal/bench: the pooled-versus-traditional benchmark harness
//   - pkg/config, pkg/logger, pkg/errors, pkg/metrics: configuration,
//     structured logging, error handling, and Prometheus observability
//
// # Quick Start
//
// Pool database sessions keyed by connection string:
//
//	pool := reuse.NewPool(db.Factory(ctx), config.DefaultPoolConfig("sessions"), nil)
//	defer pool.Close()
//
//	lease, err := pool.Checkout(dsn)
//	if err != nil {
//	    return err
//	}
//	defer lease.Release()
//
//	rows, err := lease.Value().Query(ctx, "SELECT 1")
//
// The reuse CLI benchmarks pooled checkouts against opening and closing a
// session per use:
//
//	reuse bench --dsn postgres://localhost/app --iterations 1000 --runs 10
package reuse

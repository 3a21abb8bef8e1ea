// Package metrics provides Prometheus observability for reuse pools.
// It exposes pool inventory, cleaning-queue depth, and checkout counters
// without coupling the pool core to a metrics backend: the collector reads
// a stats snapshot function and converts it to const metrics on scrape.
//
// Basic usage:
//
//	pool := reuse.NewPool(factory, cfg, log)
//	prometheus.MustRegister(metrics.NewPoolCollector(cfg.Name, pool.Stats))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/reuse/pkg/reuse"
)

// PoolCollector exports a pool's statistics as Prometheus metrics. Each
// scrape takes a fresh Stats snapshot, so no background sampling goroutine
// is needed.
type PoolCollector struct {
	stats func() reuse.PoolStats

	size          *prometheus.Desc
	pending       *prometheus.Desc
	hits          *prometheus.Desc
	misses        *prometheus.Desc
	resetFailures *prometheus.Desc
	destroyed     *prometheus.Desc
}

// NewPoolCollector creates a collector for one pool. The poolName becomes
// the "pool" label on every exported metric; stats is typically the pool's
// Stats method.
func NewPoolCollector(poolName string, stats func() reuse.PoolStats) *PoolCollector {
	labels := prometheus.Labels{"pool": poolName}
	return &PoolCollector{
		stats: stats,
		size: prometheus.NewDesc(
			"reuse_pool_inventory_size",
			"Current total idle instances across all buckets",
			nil, labels),
		pending: prometheus.NewDesc(
			"reuse_pool_pending_clean",
			"Instances queued for background reset",
			nil, labels),
		hits: prometheus.NewDesc(
			"reuse_pool_checkout_hits_total",
			"Checkouts served from an idle bucket",
			nil, labels),
		misses: prometheus.NewDesc(
			"reuse_pool_checkout_misses_total",
			"Checkouts that constructed a fresh instance",
			nil, labels),
		resetFailures: prometheus.NewDesc(
			"reuse_pool_reset_failures_total",
			"Instances dropped because Reset returned an error",
			nil, labels),
		destroyed: prometheus.NewDesc(
			"reuse_pool_destroyed_total",
			"Instances destroyed for any reason (capacity, failed reset, shutdown)",
			nil, labels),
	}
}

// Describe implements prometheus.Collector
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.pending
	ch <- c.hits
	ch <- c.misses
	ch <- c.resetFailures
	ch <- c.destroyed
}

// Collect implements prometheus.Collector
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.resetFailures, prometheus.CounterValue, float64(s.ResetFailures))
	ch <- prometheus.MustNewConstMetric(c.destroyed, prometheus.CounterValue, float64(s.Destroyed))
}

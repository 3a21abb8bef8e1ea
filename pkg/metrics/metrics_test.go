package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/reuse/pkg/reuse"
)

func TestPoolCollectorExportsSnapshot(t *testing.T) {
	collector := NewPoolCollector("sessions", func() reuse.PoolStats {
		return reuse.PoolStats{
			Size:          3,
			Pending:       1,
			Hits:          10,
			Misses:        4,
			ResetFailures: 2,
			Destroyed:     6,
		}
	})

	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(collector))

	expected := `
# HELP reuse_pool_checkout_hits_total Checkouts served from an idle bucket
# TYPE reuse_pool_checkout_hits_total counter
reuse_pool_checkout_hits_total{pool="sessions"} 10
# HELP reuse_pool_checkout_misses_total Checkouts that constructed a fresh instance
# TYPE reuse_pool_checkout_misses_total counter
reuse_pool_checkout_misses_total{pool="sessions"} 4
# HELP reuse_pool_destroyed_total Instances destroyed for any reason (capacity, failed reset, shutdown)
# TYPE reuse_pool_destroyed_total counter
reuse_pool_destroyed_total{pool="sessions"} 6
# HELP reuse_pool_inventory_size Current total idle instances across all buckets
# TYPE reuse_pool_inventory_size gauge
reuse_pool_inventory_size{pool="sessions"} 3
# HELP reuse_pool_pending_clean Instances queued for background reset
# TYPE reuse_pool_pending_clean gauge
reuse_pool_pending_clean{pool="sessions"} 1
# HELP reuse_pool_reset_failures_total Instances dropped because Reset returned an error
# TYPE reuse_pool_reset_failures_total counter
reuse_pool_reset_failures_total{pool="sessions"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected)))
}

func TestPoolCollectorTakesFreshSnapshotPerScrape(t *testing.T) {
	var hits int64
	collector := NewPoolCollector("sessions", func() reuse.PoolStats {
		hits++
		return reuse.PoolStats{Hits: hits}
	})

	first := gatherHits(t, collector)
	second := gatherHits(t, collector)
	assert.Less(t, first, second)
}

// testutil.ToFloat64 cannot pick among multiple metrics, so gather manually
// and read the hits counter.
func gatherHits(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "reuse_pool_checkout_hits_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatal("hits metric not found")
	return 0
}

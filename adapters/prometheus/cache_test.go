package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics(reg)
	require.NotNil(t, m)

	m.Hit("drivers")
	m.Hit("drivers")
	m.Miss("drivers")
	m.StaleServed("drivers")
	m.Revalidated("drivers", true)
	m.Revalidated("drivers", false)
	m.BatchFetch("drivers", 3)

	timer := m.FetchDuration("drivers")
	require.NotNil(t, timer)
	timer.ObserveDuration()

	cm := m.(*cacheMetrics)
	require.Equal(t, float64(2), testutil.ToFloat64(cm.hits.WithLabelValues("drivers")))
	require.Equal(t, float64(1), testutil.ToFloat64(cm.misses.WithLabelValues("drivers")))
	require.Equal(t, float64(1), testutil.ToFloat64(cm.staleServed.WithLabelValues("drivers")))
	require.Equal(t, float64(1), testutil.ToFloat64(cm.revalidations.WithLabelValues("drivers", "true")))
	require.Equal(t, float64(1), testutil.ToFloat64(cm.revalidations.WithLabelValues("drivers", "false")))
	require.Equal(t, float64(1), testutil.ToFloat64(cm.batchesTotal.WithLabelValues("drivers")))
}

func TestNewCacheMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCacheMetrics(reg)
	require.Panics(t, func() { NewCacheMetrics(reg) })
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusMetrics_PrivateRegistry(t *testing.T) {
	// constructing twice must not panic on duplicate registration
	assert.NotPanics(t, func() {
		NewPrometheusMetrics(nil)
		NewPrometheusMetrics(nil)
	})
}

func TestPrometheusMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordRun("genetic", "ok", 150*time.Millisecond)
	m.RecordGeneration(0.8)
	m.RecordGeneration(0.9)
	m.RecordEvaluation("revenue", false)
	m.RecordEvaluation("revenue", true)
	m.RecordViolation("budget")
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()
	m.RecordGuardRejection("revenue", "circuit_open")
	m.RecordFrontier(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("genetic", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal))
	assert.Equal(t, 0.9, testutil.ToFloat64(m.BestFitness))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("revenue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationErrorsTotal.WithLabelValues("revenue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ViolationsTotal.WithLabelValues("budget")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardRejectionsTotal.WithLabelValues("revenue", "circuit_open")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["optimizer_frontier_size"])
	assert.True(t, names["optimizer_run_duration_seconds"])
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec

	// Search metrics
	GenerationsTotal prometheus.Counter
	BestFitness      prometheus.Gauge
	FrontierSize     prometheus.Histogram

	// Evaluation metrics
	EvaluationsTotal      *prometheus.CounterVec
	EvaluationErrorsTotal *prometheus.CounterVec
	ViolationsTotal       *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Guard metrics
	GuardRejectionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the optimizer metrics with reg.
// A nil reg uses a private registry, which keeps repeated construction safe.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// Run metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_runs_total",
				Help: "Total number of optimize calls",
			},
			[]string{"path", "status"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "optimizer_run_duration_seconds",
				Help:    "Optimize call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),

		// Search metrics
		GenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "optimizer_generations_total",
				Help: "Total number of GA generations evaluated",
			},
		),

		BestFitness: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "optimizer_best_fitness",
				Help: "Best fitness of the most recent generation",
			},
		),

		FrontierSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "optimizer_frontier_size",
				Help:    "Number of solutions in returned Pareto frontiers",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),

		// Evaluation metrics
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_evaluations_total",
				Help: "Total number of objective evaluations",
			},
			[]string{"objective"},
		),

		EvaluationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_evaluation_errors_total",
				Help: "Total number of failed objective evaluations",
			},
			[]string{"objective"},
		),

		ViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_constraint_violations_total",
				Help: "Total number of constraint violations observed",
			},
			[]string{"constraint"},
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "optimizer_cache_hits_total",
				Help: "Total number of evaluation cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "optimizer_cache_misses_total",
				Help: "Total number of evaluation cache misses",
			},
		),

		// Guard metrics
		GuardRejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_guard_rejections_total",
				Help: "Total number of evaluations rejected by a rate limiter or circuit breaker",
			},
			[]string{"objective", "reason"},
		),
	}
}

// RecordRun records a finished optimize call
func (m *PrometheusMetrics) RecordRun(path, status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(path, status).Inc()
	m.RunDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordGeneration records one evaluated generation
func (m *PrometheusMetrics) RecordGeneration(best float64) {
	m.GenerationsTotal.Inc()
	m.BestFitness.Set(best)
}

// RecordFrontier records the size of a returned frontier
func (m *PrometheusMetrics) RecordFrontier(size int) {
	m.FrontierSize.Observe(float64(size))
}

// RecordEvaluation records an objective evaluation and whether it failed
func (m *PrometheusMetrics) RecordEvaluation(objective string, failed bool) {
	m.EvaluationsTotal.WithLabelValues(objective).Inc()
	if failed {
		m.EvaluationErrorsTotal.WithLabelValues(objective).Inc()
	}
}

// RecordViolation records a violated constraint
func (m *PrometheusMetrics) RecordViolation(constraint string) {
	m.ViolationsTotal.WithLabelValues(constraint).Inc()
}

// RecordCacheHit records a cache hit
func (m *PrometheusMetrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordGuardRejection records an evaluation refused by a guard
func (m *PrometheusMetrics) RecordGuardRejection(objective, reason string) {
	m.GuardRejectionsTotal.WithLabelValues(objective, reason).Inc()
}

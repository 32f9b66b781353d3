package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the advisor.
type Registry struct {
	registry *prometheus.Registry

	// Snapshot fetch metrics
	SnapshotFetches      *prometheus.CounterVec
	SnapshotFetchSeconds prometheus.Histogram
	SnapshotPoolCount    prometheus.Gauge

	// Selection and recommendation metrics
	Selections      *prometheus.CounterVec
	SafePoolQueries prometheus.Counter
	Recommendations *prometheus.CounterVec
}

// NewRegistry creates a metrics registry with all advisor metrics registered.
// Each Registry carries its own Prometheus registry so repeated construction
// never collides on collector names.
func NewRegistry() *Registry {
	m := &Registry{
		registry: prometheus.NewRegistry(),

		SnapshotFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_snapshot_fetches_total",
				Help: "Total snapshot fetch attempts by result",
			},
			[]string{"result"},
		),

		SnapshotFetchSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_snapshot_fetch_seconds",
				Help:    "Duration of snapshot fetches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		SnapshotPoolCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_snapshot_pool_count",
				Help: "Number of pool records in the most recent snapshot",
			},
		),

		Selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_selections_total",
				Help: "Total opportunity selections by scope",
			},
			[]string{"scope"},
		),

		SafePoolQueries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_safe_pool_queries_total",
				Help: "Total safe-pool list queries",
			},
		),

		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_recommendations_total",
				Help: "Total recommendations by action",
			},
			[]string{"action"},
		),
	}

	m.registry.MustRegister(
		m.SnapshotFetches,
		m.SnapshotFetchSeconds,
		m.SnapshotPoolCount,
		m.Selections,
		m.SafePoolQueries,
		m.Recommendations,
	)

	return m
}

// RecordSnapshotFetch records one fetch attempt with its outcome and duration.
func (m *Registry) RecordSnapshotFetch(result string, duration time.Duration) {
	m.SnapshotFetches.WithLabelValues(result).Inc()
	m.SnapshotFetchSeconds.Observe(duration.Seconds())
}

// SetSnapshotPoolCount records the size of the most recent snapshot.
func (m *Registry) SetSnapshotPoolCount(count int) {
	m.SnapshotPoolCount.Set(float64(count))
}

// RecordSelection records one opportunity selection under the given scope.
func (m *Registry) RecordSelection(scope string) {
	m.Selections.WithLabelValues(scope).Inc()
}

// RecordSafePoolQuery records one safe-pool list query.
func (m *Registry) RecordSafePoolQuery() {
	m.SafePoolQueries.Inc()
}

// RecordRecommendation records one recommendation by its final action.
func (m *Registry) RecordRecommendation(action string) {
	m.Recommendations.WithLabelValues(action).Inc()
}

// Handler returns an HTTP handler serving this registry in Prometheus
// exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

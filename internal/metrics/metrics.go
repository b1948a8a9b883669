// Package metrics defines the Prometheus instrumentation for the answer
// pipeline. All metrics are registered on a caller-supplied registry so tests
// can use isolated registries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Query pipeline metrics
	QueriesTotal         *prometheus.CounterVec
	QueryDurationSeconds *prometheus.HistogramVec

	// Stage metrics
	StageDurationSeconds *prometheus.HistogramVec

	// Generation metrics
	GenerationTotal         *prometheus.CounterVec
	GenerationFallbackTotal prometheus.Counter

	// Embedding cache metrics
	EmbedCacheHitsTotal   prometheus.Counter
	EmbedCacheMissesTotal prometheus.Counter

	// Corpus metrics
	IndexSize     prometheus.Gauge
	CatalogueSize prometheus.Gauge

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		QueriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_queries_total",
				Help: "Total number of answered queries by intent and status",
			},
			[]string{"intent", "status"}, // status: success, error
		),

		QueryDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_query_duration_seconds",
				Help:    "End-to-end answer duration in seconds by intent",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"intent"},
		),

		StageDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"stage"}, // stage: encode, search, format, generate
		),

		GenerationTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_generation_total",
				Help: "Total number of LLM generation attempts by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		GenerationFallbackTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_generation_fallback_total",
				Help: "Total number of answers served from the deterministic fallback",
			},
		),

		EmbedCacheHitsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_embed_cache_hits_total",
				Help: "Total number of embedding cache hits",
			},
		),

		EmbedCacheMissesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_embed_cache_misses_total",
				Help: "Total number of embedding cache misses",
			},
		),

		IndexSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_index_vectors",
				Help: "Number of vectors in the loaded flat index",
			},
		),

		CatalogueSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_catalogue_records",
				Help: "Number of records in the loaded catalogue",
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: bad_request, timeout, internal
		),
	}

	return m
}

// RecordGeneration records one LLM generation attempt outcome.
func (m *Metrics) RecordGeneration(provider, status string) {
	if m == nil {
		return
	}
	m.GenerationTotal.WithLabelValues(provider, status).Inc()
}

// RecordEmbedCacheHit records an embedding served from the cache.
func (m *Metrics) RecordEmbedCacheHit() {
	if m == nil {
		return
	}
	m.EmbedCacheHitsTotal.Inc()
}

// RecordEmbedCacheMiss records an embedding that required an API call.
func (m *Metrics) RecordEmbedCacheMiss() {
	if m == nil {
		return
	}
	m.EmbedCacheMissesTotal.Inc()
}

// RecordHTTPError records an HTTP-level request failure.
func (m *Metrics) RecordHTTPError(errorType string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}

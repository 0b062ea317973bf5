package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the gestor client
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Backend Metrics
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Dashboard Metrics
	PipelineRunsTotal       *prometheus.CounterVec
	PipelineDuration        prometheus.Histogram
	PipelineSupersededTotal prometheus.Counter

	// Action and auth metrics
	ActionsTotal         *prometheus.CounterVec
	AuthTransitionsTotal *prometheus.CounterVec
	SessionRefreshTotal  *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in production so promhttp.Handler exposes them.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gestor_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gestor_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_provider_requests_total",
				Help: "Remote backend calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		ProviderRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gestor_provider_request_duration_seconds",
				Help:    "Remote backend call latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		PipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_dashboard_pipeline_runs_total",
				Help: "Dashboard pipeline runs by outcome (ok, partial, failed, superseded)",
			},
			[]string{"outcome"},
		),
		PipelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gestor_dashboard_pipeline_duration_seconds",
				Help:    "Dashboard pipeline wall time in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		PipelineSupersededTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gestor_dashboard_pipeline_superseded_total",
				Help: "Pipeline results discarded because a newer run started",
			},
		),

		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_actions_total",
				Help: "Dashboard mutations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		AuthTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_auth_transitions_total",
				Help: "Auth state machine transitions by target phase",
			},
			[]string{"phase"},
		),
		SessionRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gestor_session_refresh_total",
				Help: "Background token refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Nop returns a registry bound to a private prometheus registry, for tests and tools.
func Nop() *MetricsRegistry {
	return NewMetricsRegistry(prometheus.NewRegistry())
}

// Package metrics provides Prometheus metrics for the transit core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
// Every recording method is safe to call on a nil *Metrics so components can
// be constructed without metrics in tests.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Gateway metrics
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec

	// Cache metrics
	CacheLookupsTotal *prometheus.CounterVec

	// Refresher metrics
	RefreshCyclesTotal   *prometheus.CounterVec
	RefreshRoutesTotal   *prometheus.CounterVec
	RefreshCycleDuration prometheus.Histogram
	SavedRoutes          prometheus.Gauge
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	gatewayRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ontime_gateway_requests_total",
			Help: "Total number of requests made to the transit API",
		},
		[]string{"endpoint", "outcome"},
	)

	gatewayRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ontime_gateway_request_duration_seconds",
			Help:    "Transit API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ontime_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)

	refreshCyclesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ontime_refresh_cycles_total",
			Help: "Completed arrival refresh cycles by terminal state",
		},
		[]string{"state"},
	)

	refreshRoutesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ontime_refresh_routes_total",
			Help: "Per route refresh outcomes",
		},
		[]string{"outcome"},
	)

	refreshCycleDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ontime_refresh_cycle_duration_seconds",
		Help:    "Arrival refresh cycle duration",
		Buckets: prometheus.DefBuckets,
	})

	savedRoutes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ontime_saved_routes",
		Help: "Number of saved routes seen by the last refresh cycle",
	})

	registry.MustRegister(
		gatewayRequestsTotal,
		gatewayRequestDuration,
		cacheLookupsTotal,
		refreshCyclesTotal,
		refreshRoutesTotal,
		refreshCycleDuration,
		savedRoutes,
	)

	return &Metrics{
		Registry:               registry,
		GatewayRequestsTotal:   gatewayRequestsTotal,
		GatewayRequestDuration: gatewayRequestDuration,
		CacheLookupsTotal:      cacheLookupsTotal,
		RefreshCyclesTotal:     refreshCyclesTotal,
		RefreshRoutesTotal:     refreshRoutesTotal,
		RefreshCycleDuration:   refreshCycleDuration,
		SavedRoutes:            savedRoutes,
	}
}

// ObserveGatewayRequest records one transit API call.
func (m *Metrics) ObserveGatewayRequest(endpoint string, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.GatewayRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveRefreshCycle records a finished refresh cycle.
func (m *Metrics) ObserveRefreshCycle(state string, routes int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RefreshCyclesTotal.WithLabelValues(state).Inc()
	m.RefreshCycleDuration.Observe(duration.Seconds())
	m.SavedRoutes.Set(float64(routes))
}

// SetSavedRoutes reports the current size of the saved set.
func (m *Metrics) SetSavedRoutes(routes int) {
	if m == nil {
		return
	}
	m.SavedRoutes.Set(float64(routes))
}

// ObserveRefreshRoute records the outcome for a single saved route.
func (m *Metrics) ObserveRefreshRoute(outcome string) {
	if m == nil {
		return
	}
	m.RefreshRoutesTotal.WithLabelValues(outcome).Inc()
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a point-in-time summary of the collected metrics.
type MetricsSnapshot struct {
	CacheHitRatio       float64   `json:"cacheHitRatio"`
	CacheHits           uint64    `json:"cacheHits"`
	CacheMisses         uint64    `json:"cacheMisses"`
	CoalescedWaits      uint64    `json:"coalescedWaits"`
	Invalidations       uint64    `json:"invalidations"`
	GatewayRequests     uint64    `json:"gatewayRequests"`
	AverageGatewayMs    float64   `json:"averageGatewayMs"`
	APIRequests         uint64    `json:"apiRequests"`
	APIFailures         uint64    `json:"apiFailures"`
	AverageAPIRequestMs float64   `json:"averageApiRequestMs"`
	Goroutines          int       `json:"goroutines"`
	GeneratedAt         time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation for the gateway,
// the backend client and the query cache.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	apiTotal        *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	coalesced       prometheus.Counter
	invalidations   *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	coalescedCount       uint64
	invalidationCount    uint64
	requestCount         uint64
	requestDurationTotal uint64
	apiCount             uint64
	apiFailureCount      uint64
	apiDurationTotal     uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of gateway HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of gateway HTTP requests",
	}, []string{"method", "path", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	apiTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of backend API requests",
	}, []string{"method", "route", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for query cache reads",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	coalesced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_coalesced_waits_total",
		Help: "Reads that joined an in-flight fetch for the same key",
	})

	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_invalidated_entries_total",
		Help: "Cache entries made stale by tag invalidation",
	}, []string{"tag"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, apiDuration, apiTotal, cacheLatency, cacheHitRatio, cacheHits, cacheMisses, coalesced, invalidations, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		apiDuration:     apiDuration,
		apiTotal:        apiTotal,
		cacheLatency:    cacheLatency,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		coalesced:       coalesced,
		invalidations:   invalidations,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records gateway request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveAPIRequest records one backend call. A status of zero means the
// request never got an HTTP response.
func (m *MetricsService) ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.apiDuration.WithLabelValues(method, route, labelStatus).Observe(duration.Seconds())
	m.apiTotal.WithLabelValues(method, route, labelStatus).Inc()
	atomic.AddUint64(&m.apiCount, 1)
	atomic.AddUint64(&m.apiDurationTotal, uint64(duration.Nanoseconds()))
	if status == 0 || status >= http.StatusBadRequest {
		atomic.AddUint64(&m.apiFailureCount, 1)
	}
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordCoalescedWait counts a read served by another caller's fetch.
func (m *MetricsService) RecordCoalescedWait() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
	atomic.AddUint64(&m.coalescedCount, 1)
}

// RecordInvalidation counts entries made stale by tag.
func (m *MetricsService) RecordInvalidation(tag string, entries int) {
	if m == nil || entries <= 0 {
		return
	}
	m.invalidations.WithLabelValues(tag).Add(float64(entries))
	atomic.AddUint64(&m.invalidationCount, uint64(entries))
}

// Snapshot returns aggregated metrics for the gateway's status endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	apiCount := atomic.LoadUint64(&m.apiCount)
	apiDuration := atomic.LoadUint64(&m.apiDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgAPIMs float64
	if apiCount > 0 {
		avgAPIMs = float64(apiDuration) / float64(apiCount) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		CacheHitRatio:       cacheRatio,
		CacheHits:           hits,
		CacheMisses:         misses,
		CoalescedWaits:      atomic.LoadUint64(&m.coalescedCount),
		Invalidations:       atomic.LoadUint64(&m.invalidationCount),
		GatewayRequests:     requests,
		AverageGatewayMs:    avgRequestMs,
		APIRequests:         apiCount,
		APIFailures:         atomic.LoadUint64(&m.apiFailureCount),
		AverageAPIRequestMs: avgAPIMs,
		Goroutines:          runtime.NumGoroutine(),
		GeneratedAt:         time.Now().UTC(),
	}
}

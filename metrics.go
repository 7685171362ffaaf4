package petango

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for queries, cache lookups
// and parse results. A nil collector records nothing.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	recordsParsed *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec

	buildInfo *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registry)
	mc := &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petango_requests_total",
				Help: "Total number of requests sent to the adoption service",
			},
			[]string{"endpoint", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "petango_request_duration_seconds",
				Help:    "Duration of requests to the adoption service in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petango_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"operation"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petango_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"operation"},
		),
		recordsParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petango_records_parsed_total",
				Help: "Total number of records parsed from responses",
			},
			[]string{"endpoint"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petango_errors_total",
				Help: "Total number of errors returned to callers",
			},
			[]string{"kind", "operation"},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "petango_build_info",
				Help: "Build of the petango client, always 1",
			},
			[]string{"version", "commit", "go_version"},
		),
	}
	build := CurrentBuild()
	mc.buildInfo.WithLabelValues(build.Version, build.Commit, build.GoVersion).Set(1)
	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordRequest records request count and duration. statusCode 0 means no
// response was received.
func (mc *MetricsCollector) RecordRequest(endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	mc.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheHit increments cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(operation string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss increments cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(operation string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(operation).Inc()
}

// RecordRecordsParsed adds n parsed records for endpoint.
func (mc *MetricsCollector) RecordRecordsParsed(endpoint string, n int) {
	if mc == nil {
		return
	}

	mc.recordsParsed.WithLabelValues(endpoint).Add(float64(n))
}

// RecordError increments error counter by kind.
func (mc *MetricsCollector) RecordError(kind, operation string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(kind, operation).Inc()
}

// GetRegistry exposes the underlying prometheus registry, nil when the
// collector was built on a plain Registerer.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	if mc == nil {
		return nil
	}
	return mc.registry
}

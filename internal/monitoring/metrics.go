// Package monitoring exposes Prometheus metrics for the ingestion pipeline.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Custom registry to avoid the default Go runtime collectors.
var registry = prometheus.NewRegistry()

var (
	activitiesIngested = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "openpace",
		Subsystem: "ingest",
		Name:      "activities_total",
		Help:      "Total number of activities successfully ingested, by source format",
	}, []string{"format"})

	duplicateUploads = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "openpace",
		Subsystem: "ingest",
		Name:      "duplicates_total",
		Help:      "Total number of uploads short-circuited by checksum idempotence",
	})

	ingestFailures = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "openpace",
		Subsystem: "ingest",
		Name:      "failures_total",
		Help:      "Total number of failed ingestions, by failure kind",
	}, []string{"kind"})

	ingestDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "openpace",
		Subsystem: "ingest",
		Name:      "duration_seconds",
		Help:      "Histogram of end-to-end ingestion latency per file",
		Buckets:   prometheus.DefBuckets,
	})

	segmentMatches = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "openpace",
		Subsystem: "matching",
		Name:      "matches_total",
		Help:      "Total number of segment matches recorded",
	})

	geocodeFailures = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "openpace",
		Subsystem: "geocode",
		Name:      "failures_total",
		Help:      "Total number of reverse geocoding failures (advisory, never fatal)",
	})

	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "openpace",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests, by method, path and status",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openpace",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Histogram of HTTP request latency, by method and path",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// RecordIngest counts one successful ingestion
func RecordIngest(format string, elapsed time.Duration) {
	activitiesIngested.WithLabelValues(format).Inc()
	ingestDuration.Observe(elapsed.Seconds())
}

// RecordDuplicate counts one checksum-deduplicated upload
func RecordDuplicate() {
	duplicateUploads.Inc()
}

// RecordIngestFailure counts one failed ingestion
func RecordIngestFailure(kind string) {
	ingestFailures.WithLabelValues(kind).Inc()
}

// RecordMatches counts newly recorded segment matches
func RecordMatches(n int) {
	segmentMatches.Add(float64(n))
}

// RecordGeocodeFailure counts one advisory geocoding failure
func RecordGeocodeFailure() {
	geocodeFailures.Inc()
}

// RecordHTTPRequest counts one finished HTTP request
func RecordHTTPRequest(method, path, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler returns the /metrics endpoint handler backed by the custom
// registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	// Memoized aggregation lookups; result is "hit" or "miss".
	AggregationCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_cache_lookups_total",
			Help: "Memoized aggregation lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Change events published to NATS",
		},
		[]string{"entity", "action", "status"},
	)

	OutboundRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Latency of calls to Jira, Ignition and Power Automate",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"target", "status"},
	)
)

func RecordHTTPRequestDuration(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func RecordDBQueryDuration(operation string, d time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	AggregationCache.WithLabelValues(kind, result).Inc()
}

func RecordEventPublished(entity, action string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EventsPublished.WithLabelValues(entity, action, status).Inc()
}

func RecordOutbound(target, status string, d time.Duration) {
	OutboundRequests.WithLabelValues(target, status).Observe(d.Seconds())
}

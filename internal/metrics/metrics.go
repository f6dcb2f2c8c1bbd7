package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Shopsearch metrics - registered once with the default registry
var (
	// HTTP requests by route template and status code
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request duration by route template
	HTTPRequestDuration *prometheus.HistogramVec

	// Cache lookups by outcome (hit, miss, error)
	CacheLookupsTotal *prometheus.CounterVec

	// Remote search calls by engine and status
	UpstreamRequestsTotal *prometheus.CounterVec

	// Remote search latency by engine
	UpstreamLatency *prometheus.HistogramVec

	// Callers that joined an in-flight remote call instead of issuing their own
	SharedCallsTotal prometheus.Counter
)

func init() {
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"route"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Search cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Search API calls by engine and status",
		},
		[]string{"engine", "status"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Search API response time in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"engine"},
	)

	SharedCallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "search",
			Name:      "shared_calls_total",
			Help:      "Requests served by joining an in-flight search API call",
		},
	)

	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamLatency)
	prometheus.MustRegister(SharedCallsTotal)
}

// Cache lookup outcomes
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(route string, status int, durationSec float64) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(durationSec)
}

// RecordCacheLookup records a search cache lookup
func RecordCacheLookup(outcome string) {
	CacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstream records a remote search call. status is the HTTP code or "error"/"timeout".
func RecordUpstream(engine, status string, durationSec float64) {
	if engine == "" {
		engine = "unknown"
	}
	UpstreamRequestsTotal.WithLabelValues(engine, status).Inc()
	UpstreamLatency.WithLabelValues(engine).Observe(durationSec)
}

// RecordSharedCall records a caller that reused an in-flight remote call
func RecordSharedCall() {
	SharedCallsTotal.Inc()
}

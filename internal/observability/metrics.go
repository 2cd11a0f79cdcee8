// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "croctop_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "croctop_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// GraphMutations counts relationship mutations by action and outcome.
	GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "croctop_graph_mutations_total",
		Help: "Relationship mutations by action and result",
	}, []string{"action", "result"})

	// GraphMutationLatency records how long each relationship transaction takes.
	GraphMutationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "croctop_graph_mutation_latency_seconds",
		Help:    "Relationship mutation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	// AuthEvents counts signin, signup and refresh outcomes.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "croctop_auth_events_total",
		Help: "Authentication events by type and result",
	}, []string{"event", "result"})
)

// TrackGraphMutation returns a func that records the outcome and latency of one
// mutation. Call it with the mutation's final error.
func TrackGraphMutation(action string) func(err error, result string) {
	start := time.Now()
	return func(err error, result string) {
		GraphMutationLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
		if result == "" {
			result = "ok"
			if err != nil {
				result = "error"
			}
		}
		GraphMutations.WithLabelValues(action, result).Inc()
	}
}

// RecordAuthEvent increments the auth event counter.
func RecordAuthEvent(event string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	AuthEvents.WithLabelValues(event, result).Inc()
}

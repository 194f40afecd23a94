package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "communityhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SlotOperations counts slot backend calls by operation, backend, and outcome.
	SlotOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "communityhub_slot_operations_total",
		Help: "Total number of slot backend operations",
	}, []string{"operation", "backend", "outcome"})

	// SlotLatency records slot backend latency by operation and backend.
	SlotLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "communityhub_slot_latency_seconds",
		Help:    "Slot backend latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "backend"})

	// RepositoryOperations counts repository calls by collection and operation.
	RepositoryOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "communityhub_repository_operations_total",
		Help: "Total number of repository operations",
	}, []string{"collection", "operation"})

	// NotFoundIgnored counts mutations that targeted a missing id.
	NotFoundIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "communityhub_not_found_ignored_total",
		Help: "Total number of mutations ignored because the target id was missing",
	}, []string{"collection", "operation"})

	// EventsPublished counts domain events by subject and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "communityhub_events_published_total",
		Help: "Total number of domain events published",
	}, []string{"subject", "outcome"})

	// EventSubscribers tracks live event stream subscribers.
	EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "communityhub_event_subscribers",
		Help: "Number of live event stream subscribers",
	})
)

// ObserveSlot records the latency and outcome of one slot backend call.
func ObserveSlot(operation, backend string, start time.Time, err error) {
	SlotLatency.WithLabelValues(operation, backend).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SlotOperations.WithLabelValues(operation, backend, outcome).Inc()
}

// TrackSlot returns a function that records the call when invoked (e.g. defer).
func TrackSlot(operation, backend string) func(err error) {
	start := time.Now()
	return func(err error) {
		ObserveSlot(operation, backend, start, err)
	}
}

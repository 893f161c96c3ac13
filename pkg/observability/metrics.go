package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	SkillsCreated   prometheus.Counter
	SkillsDeleted   prometheus.Counter
	CountersCreated prometheus.Counter
	SnapshotsSaved  prometheus.Counter
	SnapshotErrors  prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace.
// Every call returns an independent collector backed by its own registry,
// so multiple instances never collide on registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	skillsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skills_created_total",
		Help:      "Total number of skills created",
	})

	skillsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skills_deleted_total",
		Help:      "Total number of skills deleted (cascades included)",
	})

	countersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counters_created_total",
		Help:      "Total number of counters created",
	})

	snapshotsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_saved_total",
		Help:      "Total number of successful state snapshots",
	})

	snapshotErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_errors_total",
		Help:      "Total number of failed state snapshots",
	})

	registry.MustRegister(
		httpRequests,
		httpDuration,
		skillsCreated,
		skillsDeleted,
		countersCreated,
		snapshotsSaved,
		snapshotErrors,
	)

	return &Collector{
		registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		SkillsCreated:   skillsCreated,
		SkillsDeleted:   skillsDeleted,
		CountersCreated: countersCreated,
		SnapshotsSaved:  snapshotsSaved,
		SnapshotErrors:  snapshotErrors,
	}
}

// Handler returns an HTTP handler exposing the collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

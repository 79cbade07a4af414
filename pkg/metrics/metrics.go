// Package metrics provides Prometheus instrumentation for the storefront
// client.
//
// The API client records a counter and duration histogram per backend call,
// and the state store counts mutations and persistence failures. Mount
// Handler() on /metrics (the mock server does this) to scrape them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each backend call takes,
	// broken down by method, path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gebeya",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all backend calls. Transport failures are
	// labelled with status "error".
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gebeya",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of backend API requests.",
		},
		[]string{"method", "path", "status"},
	)

	// StoreMutations counts store operations that persisted state.
	StoreMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gebeya",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Total state store mutations, by operation.",
		},
		[]string{"op"},
	)

	// PersistFailures counts envelope writes that failed and were
	// recovered by the degradation policy.
	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gebeya",
		Subsystem: "store",
		Name:      "persist_failures_total",
		Help:      "Total failed envelope writes (before degradation).",
	})

	// CartItems tracks the current cart size (sum of quantities).
	CartItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gebeya",
		Subsystem: "store",
		Name:      "cart_items",
		Help:      "Current number of items in the cart.",
	})
)

// DefaultRegistry is the Prometheus registry used by the client.
// Register your own metrics against this.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		StoreMutations,
		PersistFailures,
		CartItems,
	)
}

// Register lets you add your own prometheus.Collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// Handler returns an http.HandlerFunc that exposes the Prometheus metrics
// page. Mount it on GET /metrics.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// Package metrics exposes poll and HTTP telemetry on a private Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/unreadwatch/internal/application"
	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

const namespace = "unreadwatch"

// Compile-time interface satisfaction check.
var _ application.Observer = (*Metrics)(nil)

// Metrics holds every collector the process exports.
type Metrics struct {
	registry      *prometheus.Registry
	ticks         *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	fetchFailures prometheus.Counter
	lastFetched   prometheus.Gauge
	httpRequests  *prometheus.CounterVec
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Poll ticks by outcome.",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Notification decisions by kind.",
		}, []string{"kind"}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Unread count fetches that failed and were treated as zero.",
		}),
		lastFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_fetched_count",
			Help:      "Most recent normalized unread count.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.ticks,
		m.decisions,
		m.fetchFailures,
		m.lastFetched,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTick implements application.Observer.
func (m *Metrics) ObserveTick(outcome string) {
	m.ticks.WithLabelValues(outcome).Inc()
}

// ObserveDecision implements application.Observer.
func (m *Metrics) ObserveDecision(kind model.DecisionKind) {
	m.decisions.WithLabelValues(string(kind)).Inc()
}

// ObserveFetch implements application.Observer.
func (m *Metrics) ObserveFetch(count int, err error) {
	if err != nil {
		m.fetchFailures.Inc()
	}
	m.lastFetched.Set(float64(count))
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

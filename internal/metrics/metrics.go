// Package metrics provides the Prometheus metrics exported by ReviewHub.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// Metrics holds the HTTP and bug tracker metrics. It implements
// prometheus.Collector and is registered on construction.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	bugLookupsTotal     *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with registry.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reviewhub_http_request_duration_seconds",
				Help:    "Time taken to serve HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		bugLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewhub_bug_lookups_total",
				Help: "Total number of bug lookups by tracker and result",
			},
			[]string{"tracker", "result"}, // result: hit, found, empty
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return m, nil
}

// ObserveRequest records a served HTTP request. route is the matched mux
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveBugLookup records the outcome of a bug info lookup.
func (m *Metrics) ObserveBugLookup(tracker model.BugTrackerType, result string) {
	m.bugLookupsTotal.WithLabelValues(string(tracker), result).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
	m.bugLookupsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
	m.bugLookupsTotal.Collect(ch)
}

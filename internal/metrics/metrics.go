// Package metrics exposes Prometheus collectors for the HTTP surface and the
// obligation ledger.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	adjustments     *prometheus.CounterVec
	skippedReversal prometheus.Counter
	mirrorFailures  *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors plus the
// ledger collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "obligation_adjustments_total",
			Help:      "Obligation balance changes by kind (apply, reverse).",
		}, []string{"kind"}),
		skippedReversal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "obligation_reversals_skipped_total",
			Help:      "Reversals skipped because the linked obligation no longer exists.",
		}),
		mirrorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "mirror_publish_failures_total",
			Help:      "Failed writes to the summary mirror by label.",
		}, []string{"label"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.adjustments,
		m.skippedReversal,
		m.mirrorFailures,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveAdjustment counts one obligation balance change.
// A nil receiver is a no-op so services can run without metrics.
func (m *Metrics) ObserveAdjustment(kind string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(kind).Inc()
}

// ObserveSkippedReversal counts a reversal against a missing obligation.
func (m *Metrics) ObserveSkippedReversal() {
	if m == nil {
		return
	}
	m.skippedReversal.Inc()
}

// ObserveMirrorFailure counts a failed mirror write.
func (m *Metrics) ObserveMirrorFailure(label string) {
	if m == nil {
		return
	}
	m.mirrorFailures.WithLabelValues(label).Inc()
}

// Package metrics collects Prometheus metrics for the API gateway and the
// reference backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the gateway reports to after every request.
type Recorder interface {
	RecordRequest(method string, status int, d time.Duration)
	RecordUnauthorized()
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      prometheus.Histogram
	unauthorized prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civica_api_requests_total",
			Help: "API requests by method and status code (0 for transport failures).",
		}, []string{"method", "status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "civica_api_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civica_api_unauthorized_total",
			Help: "API responses with status 401.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.unauthorized)
	return c
}

// RecordRequest implements Recorder.
func (c *Collector) RecordRequest(method string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.latency.Observe(d.Seconds())
}

// RecordUnauthorized implements Recorder.
func (c *Collector) RecordUnauthorized() {
	c.unauthorized.Inc()
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, int, time.Duration) {}
func (Nop) RecordUnauthorized()                      {}

// package metrics holds the prometheus collectors for browser-facing requests and for
// calls made to the movie API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streamflix"

type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	apiInflight prometheus.Gauge
}

// New registers every collector in a private registry, so several instances can live
// in one process (tests do that).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Browser requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Browser request latency by route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"route"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Browser requests currently being served.",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movieapi_requests_total",
			Help:      "Requests sent to the movie API by status code and method.",
		}, []string{"code", "method"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "movieapi_request_duration_seconds",
			Help:      "Movie API latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"code", "method"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "movieapi_requests_inflight",
			Help:      "Movie API requests currently in flight.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.reqDuration, m.reqInflight,
		m.apiRequests, m.apiDuration, m.apiInflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InstrumentTransport wraps rt so every movie API call is counted and timed. A nil rt
// means http.DefaultTransport.
func (m *Metrics) InstrumentTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.apiInflight,
		promhttp.InstrumentRoundTripperCounter(m.apiRequests,
			promhttp.InstrumentRoundTripperDuration(m.apiDuration, rt),
		),
	)
}

func (m *Metrics) RequestStarted() {
	m.reqInflight.Inc()
}

// ObserveRequest records one finished browser request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, took time.Duration) {
	m.reqInflight.Dec()
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.reqDuration.WithLabelValues(route).Observe(took.Seconds())
}

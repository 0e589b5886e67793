package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "repairshop"

// Metrics holds the application's Prometheus collectors
type Metrics struct {
	registry          *prometheus.Registry
	httpReqCnt        *prometheus.CounterVec
	httpDur           *prometheus.HistogramVec
	httpInfl          *prometheus.GaugeVec
	orderTransitions  *prometheus.CounterVec
	ordersCreated     *prometheus.CounterVec
	requestsConverted prometheus.Counter
}

var defaultMetrics = New()

// Default returns the process-wide metrics instance
func Default() *Metrics {
	return defaultMetrics
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "order_status_transitions_total"}, []string{"from", "to"})
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "orders_created_total"}, []string{"source"})
	requestsConverted := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "repair_requests_converted_total"})
	r.MustRegister(orderTransitions, ordersCreated, requestsConverted)

	return &Metrics{
		registry:          r,
		httpReqCnt:        httpReqCnt,
		httpDur:           httpDur,
		httpInfl:          httpInfl,
		orderTransitions:  orderTransitions,
		ordersCreated:     ordersCreated,
		requestsConverted: requestsConverted,
	}
}

// OrderTransition counts a status change of an order
func (m *Metrics) OrderTransition(from, to string) {
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

// OrderCreated counts a new order; source is "staff" or "request"
func (m *Metrics) OrderCreated(source string) {
	m.ordersCreated.WithLabelValues(source).Inc()
}

// RequestConverted counts a repair request turned into an order
func (m *Metrics) RequestConverted() {
	m.requestsConverted.Inc()
}

// Middleware records request count, latency and in-flight requests per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

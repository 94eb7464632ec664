package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestsMetric = "storefront_http_requests_total"

type HTTPMetrics struct {
	registry *prometheus.Registry
	started  time.Time

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func New() *HTTPMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &HTTPMetrics{
		registry: reg,
		started:  time.Now(),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: requestsMetric, Help: "HTTP requests by method, route and status class",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_http_requests_in_flight", Help: "Requests being served",
		}),
	}
}

// Middleware must run outside the request logger so it sees the final status.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.inflight.Inc()
			defer m.inflight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.requests.WithLabelValues(c.Request().Method, route, statusClass(status)).Inc()
			m.latency.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type Snapshot struct {
	TotalRequests     uint64            `json:"total_requests"`
	ResponsesByStatus map[string]uint64 `json:"responses_by_status"`
	UptimeSeconds     float64           `json:"uptime_seconds"`
}

// Snapshot sums the request counter for the admin stats endpoint.
func (m *HTTPMetrics) Snapshot() (Snapshot, error) {
	s := Snapshot{
		ResponsesByStatus: map[string]uint64{"2xx": 0, "3xx": 0, "4xx": 0, "5xx": 0},
		UptimeSeconds:     time.Since(m.started).Seconds(),
	}
	families, err := m.registry.Gather()
	if err != nil {
		return s, fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != requestsMetric {
			continue
		}
		for _, metric := range mf.GetMetric() {
			n := uint64(metric.GetCounter().GetValue())
			s.TotalRequests += n
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "status" {
					s.ResponsesByStatus[lp.GetValue()] += n
				}
			}
		}
	}
	return s, nil
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

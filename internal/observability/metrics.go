package observability

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP layer and for
// authorization-model mutations.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	MutationsTotal    *prometheus.CounterVec
	RollbacksTotal    *prometheus.CounterVec
	AuditSinkFailures *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rbac_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rbac_http_in_flight_requests",
			Help: "In-flight HTTP requests",
		}),
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_mutations_total",
				Help: "Authorization model mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RollbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_rollbacks_total",
				Help: "Optimistic updates reverted after a failed commit",
			},
			[]string{"operation"},
		),
		AuditSinkFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_audit_sink_failures_total",
				Help: "Audit entries a sink failed to persist",
			},
			[]string{"sink"},
		),
	}
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPInFlight,
		m.MutationsTotal,
		m.RollbacksTotal,
		m.AuditSinkFailures,
	)
	return m
}

func (m *Metrics) Mutation(operation, outcome string) {
	m.MutationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) Rollback(operation string) {
	m.RollbacksTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) AuditSinkFailure(sink string) {
	m.AuditSinkFailures.WithLabelValues(sink).Inc()
}

// Middleware records request counts and latencies labelled by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
			return nil
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

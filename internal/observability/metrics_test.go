package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_MutationCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Mutation("toggle_permission", "success")
	m.Mutation("toggle_permission", "success")
	m.Mutation("set_role_permission", "failure")
	m.Rollback("set_role_permission")
	m.AuditSinkFailure("admin-activities")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("toggle_permission", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("set_role_permission", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RollbacksTotal.WithLabelValues("set_role_permission")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditSinkFailures.WithLabelValues("admin-activities")))
}

func TestMetrics_MiddlewareLabelsByRoute(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/users/:user_id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, errors.New("boom"))
	})

	for _, path := range []string{"/users/u1", "/users/u2", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/users/:user_id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInFlight))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.Mutation("change_user_role", "success")

	e := echo.New()
	e.GET("/metrics", m.Handler())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `rbac_mutations_total{operation="change_user_role",outcome="success"} 1`))
}

package metrics

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDeactivation(t *testing.T) {
	m := New()
	m.ObserveDeactivation("delegate", "ok")
	m.ObserveDeactivation("delegate", "ok")
	m.ObserveDeactivation("soft_delete", "missing_admins")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DeactivationsTotal.WithLabelValues("delegate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeactivationsTotal.WithLabelValues("soft_delete", "missing_admins")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDeactivation("delegate", "ok")
		m.AddCascadeDeleted("todos", 3)
		m.IncAuthFailure("invalid_token")
	})
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/todos/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/todos/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/todos/:id", "204")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RegisterDBStatsCollector(func() sql.DBStats { return sql.DBStats{OpenConnections: 4, Idle: 1, InUse: 3} })
	m.AddCascadeDeleted("todos", 5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `todo_cascade_deleted_rows_total{entity="todos"} 5`))
	assert.True(t, strings.Contains(body, "todo_db_pool_in_use_conns 3"))
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
		m.RecordStorageOp("get_user", nil)
		m.RecordCacheHit("protocols")
		m.RecordAI("chat", "fallback")
		m.SetActiveSessions(3)
		m.OnDeny("/api/users", "1.2.3.4")
	})
}

func TestCounters(t *testing.T) {
	m := NewMetrics(nil)
	m.RecordStorageOp("get_user", nil)
	m.RecordStorageOp("get_user", errors.New("x"))
	m.RecordAI("translate", "fallback")
	m.RecordSessionAction("call")
	m.RecordSessionAction("call")
	m.SetActiveSessions(4)
	m.OnAllow("/api/users/:id", "k")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOpsTotal.WithLabelValues("get_user", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiRequestsTotal.WithLabelValues("translate", "fallback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionActionsTotal.WithLabelValues("call")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitDecisions.WithLabelValues("/api/users/:id", "allow")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(nil)
	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/items/:id", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/items/:id",status="200"} 1`)
}

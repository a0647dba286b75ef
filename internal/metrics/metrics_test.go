package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservations(t *testing.T) {
	m := New()

	m.ObserveScan("added")
	m.ObserveScan("added")
	m.ObserveScan("not_found")
	m.ObserveCheckout("cash", "completed", 500)
	m.ObserveCheckout("cash", "failed", 500)
	m.SetBreakerState("catalog", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scans.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scans.WithLabelValues("not_found")))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.salesCents.WithLabelValues("cash")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.breakerState.WithLabelValues("catalog")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveScan("added")
	m.ObserveCheckout("card", "completed", 1)
	m.SetBreakerState("x", 1)
	m.ObserveEvent("ok")
	assert.Nil(t, m.Registry())
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `http_requests_total{method="GET",route="/ping/:id",status="204"} 1`))
}

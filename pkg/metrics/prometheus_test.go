package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrometheus_ServesRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	p := NewPrometheus(NewPrometheusOptions{Subsystem: "perito_test", Logger: zap.NewNop().Sugar()})
	p.Use(r)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "perito_test_req_total")
	require.Contains(t, w.Body.String(), `source="anonymous"`)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPrometheus_SourceLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	p := NewPrometheus(NewPrometheusOptions{
		Subsystem:     "perito_src",
		SourceLabelFn: func(c *gin.Context) string { return c.GetString("api_source") },
	})
	p.Use(r)
	r.GET("/ping", func(c *gin.Context) {
		c.Set("api_source", "external_api")
		c.String(http.StatusOK, "pong")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, w.Body.String(), `perito_src_req_total{code="200",method="GET",source="external_api",url="/ping"} 1`)
}

func TestBusinessMetrics_RegisterTwiceIsSafe(t *testing.T) {
	RegisterBusinessMetrics(zap.NewNop().Sugar())
	RegisterBusinessMetrics(zap.NewNop().Sugar())
	require.NotNil(t, MetricsStateChangeRecorded.MetricCollector)

	IncStateChangeRecorded("user_decision")
	IncRateLimitDecision("memory", false)
	ObserveBusinessProcess("state_change", "record", time.Now())
}

func TestComputeApproximateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/abc", nil)
	req.Header.Set("X-A", "b")
	size := computeApproximateRequestSize(req)
	require.Equal(t, len("/abc")+len("GET")+len("HTTP/1.1")+len("X-A")+len("b")+len("example.com"), size)
}

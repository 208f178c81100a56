package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteTemplateAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/v1/videos/:id", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": c.Param("id")}) })

	ok := httpReqs.WithLabelValues("GET", "/api/v1/videos/:id", "200")
	miss := httpReqs.WithLabelValues("GET", unmatchedRoute, "404")
	baseOK, baseMiss := testutil.ToFloat64(ok), testutil.ToFloat64(miss)

	for _, p := range []string{"/api/v1/videos/1", "/api/v1/videos/2", "/nope/a", "/nope/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(ok); got != baseOK+2 {
		t.Fatalf("route counter = %v, want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(miss); got != baseMiss+2 {
		t.Fatalf("unmatched counter = %v, want %v", got, baseMiss+2)
	}
	if v := testutil.ToFloat64(httpInflight); v != 0 {
		t.Fatalf("inflight = %v, want 0", v)
	}
}

func TestMetrics_LongLivedSkipsLatency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics("/api/v1/ws"))
	r.GET("/api/v1/ws", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/recommendations/:user_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	series := testutil.CollectAndCount(httpLat)
	sessions := testutil.CollectAndCount(wsSessionSeconds)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	if got := testutil.CollectAndCount(httpLat); got != series {
		t.Fatalf("ws request created latency series: %d -> %d", series, got)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/3", nil))
	if got := testutil.CollectAndCount(httpLat); got != series+1 {
		t.Fatalf("latency series = %d, want %d", got, series+1)
	}
	if got := testutil.CollectAndCount(wsSessionSeconds); got != sessions {
		t.Fatalf("session histogram is a single series, got %d", got)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/ws", "200")); got < 1 {
		t.Fatalf("ws request not counted: %v", got)
	}
}

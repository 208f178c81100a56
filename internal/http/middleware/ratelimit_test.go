package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		method string
		user   int64
		want   string
	}{
		{"anonymous read", http.MethodGet, 0, "r:ip:203.0.113.9"},
		{"anonymous like", http.MethodPost, 0, "w:ip:203.0.113.9"},
		{"viewer read", http.MethodGet, 42, "r:user:42"},
		{"viewer comment", http.MethodPost, 42, "w:user:42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(tc.method, "/api/v1/videos/1/like", nil)
			c.Request.RemoteAddr = net.JoinHostPort("203.0.113.9", "5555")
			if tc.user > 0 {
				c.Set(ctxKeyUserID, tc.user)
			}
			if got := KeyByUserOrIP()(c); got != tc.want {
				t.Fatalf("key = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(1, 0, KeyByUserOrIP())
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	if rl.burst != 1 {
		t.Fatalf("burst = %d, want coerced 1", rl.burst)
	}
	first := rl.limiterFor("w:user:1")
	if rl.limiterFor("w:user:1") != first {
		t.Fatal("bucket not reused")
	}

	clock = clock.Add(rl.idleTTL)
	rl.limiterFor("w:user:2")

	rl.mu.Lock()
	_, stale := rl.buckets["w:user:1"]
	_, fresh := rl.buckets["w:user:2"]
	rl.mu.Unlock()
	if stale || !fresh {
		t.Fatalf("after sweep: stale=%v fresh=%v", stale, fresh)
	}
}

func TestIsRateBypass(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if IsRateBypass(c) {
		t.Fatal("bypass set by default")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatal("bypass not read")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatal("non-bool must read as false")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(0.5, 1, KeyByUserOrIP(), "/api/v1/ws")
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-1")
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.POST("/api/v1/videos/:id/like", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/videos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/ws", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(method, target string, replay bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	limited := rateLimited.WithLabelValues("/api/v1/videos/:id/like")
	base := testutil.ToFloat64(limited)

	if w := send(http.MethodPost, "/api/v1/videos/1/like", false); w.Code != http.StatusOK {
		t.Fatalf("first like = %d", w.Code)
	}
	w := send(http.MethodPost, "/api/v1/videos/1/like", false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second like = %d, want 429", w.Code)
	}
	// 0.5 rps means the next token is about two seconds out.
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q, want 2", got)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "too_many_requests" || body["request_id"] != "rid-1" {
		t.Fatalf("body = %v", body)
	}
	if got := testutil.ToFloat64(limited); got != base+1 {
		t.Fatalf("rate_limited_total = %v, want %v", got, base+1)
	}

	// Reads use a separate bucket from writes.
	if w := send(http.MethodGet, "/api/v1/videos/1", false); w.Code != http.StatusOK {
		t.Fatalf("read after limited write = %d", w.Code)
	}
	if w := send(http.MethodPost, "/api/v1/videos/1/like", true); w.Code != http.StatusOK {
		t.Fatalf("replay = %d, want bypass", w.Code)
	}
	for i := 0; i < 3; i++ {
		if w := send(http.MethodGet, "/api/v1/ws", false); w.Code != http.StatusOK {
			t.Fatalf("exempt path limited on try %d: %d", i, w.Code)
		}
	}
}

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/services"
)

func TestRecommendations_Limits(t *testing.T) {
	var gotUser int64
	var gotLimit int
	h := newTestHandlers(Deps{
		RecommendDefaultLimit: 10,
		RecommendMaxLimit:     50,
		Recommend: stubRecommend{recommend: func(_ context.Context, u int64, limit int) ([]domain.VideoSummary, services.Source, error) {
			gotUser, gotLimit = u, limit
			return []domain.VideoSummary{{ID: 1}}, services.SourcePersonalized, nil
		}},
	})
	r := newEngine(h)

	w := do(t, r, http.MethodGet, "/recommendations/3", "", nil)
	if w.Code != http.StatusOK || gotUser != 3 || gotLimit != 10 {
		t.Fatalf("status=%d user=%d limit=%d", w.Code, gotUser, gotLimit)
	}
	resp := decode[RecommendationsResponse](t, w)
	if resp.Source != services.SourcePersonalized || len(resp.Recommendations) != 1 {
		t.Fatalf("resp=%+v", resp)
	}

	if w = do(t, r, http.MethodGet, "/recommendations/3?limit=5", "", nil); w.Code != http.StatusOK || gotLimit != 5 {
		t.Fatalf("limit=5 -> status=%d limit=%d", w.Code, gotLimit)
	}
	if w = do(t, r, http.MethodGet, "/recommendations/3?limit=500", "", nil); w.Code != http.StatusOK || gotLimit != 50 {
		t.Fatalf("clamp -> status=%d limit=%d", w.Code, gotLimit)
	}

	expectError(t, do(t, r, http.MethodGet, "/recommendations/3?limit=0", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, do(t, r, http.MethodGet, "/recommendations/3?limit=-2", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, do(t, r, http.MethodGet, "/recommendations/3?limit=ten", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, do(t, r, http.MethodGet, "/recommendations/zero", "", nil), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestRecommendations_TrendingEmptyAndErrors(t *testing.T) {
	h := newTestHandlers(Deps{Recommend: stubRecommend{recommend: func(_ context.Context, u int64, _ int) ([]domain.VideoSummary, services.Source, error) {
		if u == 2 {
			return nil, "", services.ErrUnavailable
		}
		return []domain.VideoSummary{}, services.SourceTrending, nil
	}}})
	r := newEngine(h)

	w := do(t, r, http.MethodGet, "/recommendations/1", "", nil)
	if w.Code != http.StatusOK || !contains(w.Body.String(), `"recommendations":[]`) || !contains(w.Body.String(), `"source":"trending"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	expectError(t, do(t, r, http.MethodGet, "/recommendations/2", "", nil), http.StatusServiceUnavailable, ErrCodeUnavailable)
}

func TestRecommendations_LogsSourceAndCount(t *testing.T) {
	h := newTestHandlers(Deps{Recommend: stubRecommend{recommend: func(context.Context, int64, int) ([]domain.VideoSummary, services.Source, error) {
		return []domain.VideoSummary{{ID: 1}, {ID: 2}}, services.SourcePersonalized, nil
	}}})

	var buf bytes.Buffer
	lg := zerolog.New(&buf).Level(zerolog.DebugLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("logger", &lg)
		c.Next()
	})
	r.GET("/recommendations/:user_id", h.Recommendations)

	if w := do(t, r, http.MethodGet, "/recommendations/4", "", nil); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	for _, want := range []string{`"user_id":4`, `"source":"personalized"`, `"results":2`, `"message":"recommendations served"`} {
		if !contains(out, want) {
			t.Fatalf("missing %s in log: %s", want, out)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	h := New(Deps{RecommendMaxLimit: 3})
	if h.RecommendDefaultLimit != 20 || h.RecommendMaxLimit != 20 {
		t.Fatalf("default=%d max=%d", h.RecommendDefaultLimit, h.RecommendMaxLimit)
	}
	if h.bc != nil {
		t.Fatalf("no hub and no broadcaster should leave bc nil")
	}
	h.broadcast("x", nil) // must not panic
}

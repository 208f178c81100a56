package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/http/middleware"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/services"
)

// ---------- service stubs ----------

type stubVideos struct {
	list func(context.Context, repo.VideoFilter, int, int) ([]domain.VideoSummary, int64, error)
	get  func(context.Context, int64) (*domain.VideoDetail, error)
}

func (s stubVideos) List(ctx context.Context, f repo.VideoFilter, p, ps int) ([]domain.VideoSummary, int64, error) {
	if s.list != nil {
		return s.list(ctx, f, p, ps)
	}
	return []domain.VideoSummary{}, 0, nil
}

func (s stubVideos) Get(ctx context.Context, id int64) (*domain.VideoDetail, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.VideoDetail{Video: domain.Video{ID: id}}, nil
}

type stubReactions struct {
	toggle func(context.Context, int64, int64, domain.ReactionKind) (services.ToggleResult, error)
}

func (s stubReactions) Toggle(ctx context.Context, u, v int64, k domain.ReactionKind) (services.ToggleResult, error) {
	if s.toggle != nil {
		return s.toggle(ctx, u, v, k)
	}
	return services.ToggleResult{Action: domain.ToggleAdded, Kind: k, Likes: 1}, nil
}

type stubComments struct {
	create   func(context.Context, services.NewComment) (*domain.Comment, bool, error)
	listPage func(context.Context, int64, int, int) ([]domain.CommentView, int64, error)
	stats    func(context.Context, int64) (int64, *time.Time, error)
}

func (s stubComments) Create(ctx context.Context, in services.NewComment) (*domain.Comment, bool, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.Comment{ID: 1, VideoID: in.VideoID, UserID: in.UserID, Text: in.Text}, false, nil
}

func (s stubComments) ListPage(ctx context.Context, v int64, p, ps int) ([]domain.CommentView, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, v, p, ps)
	}
	return []domain.CommentView{}, 0, nil
}

func (s stubComments) Stats(ctx context.Context, v int64) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, v)
	}
	return 0, nil, nil
}

type stubRecommend struct {
	recommend func(context.Context, int64, int) ([]domain.VideoSummary, services.Source, error)
}

func (s stubRecommend) Recommend(ctx context.Context, u int64, limit int) ([]domain.VideoSummary, services.Source, error) {
	if s.recommend != nil {
		return s.recommend(ctx, u, limit)
	}
	return []domain.VideoSummary{}, services.SourceTrending, nil
}

type stubProgress struct {
	record func(context.Context, int64, int64, int64, bool) (*domain.WatchHistory, error)
}

func (s stubProgress) RecordProgress(ctx context.Context, u, v, wt int64, done bool) (*domain.WatchHistory, error) {
	if s.record != nil {
		return s.record(ctx, u, v, wt, done)
	}
	return &domain.WatchHistory{UserID: u, VideoID: v, WatchTime: wt, Completed: done}, nil
}

// recorder captures broadcasts.
type recorder struct {
	mu     sync.Mutex
	events []string
	data   []any
}

func (r *recorder) BroadcastJSON(typ string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, typ)
	r.data = append(r.data, data)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// ---------- harness ----------

// newTestHandlers fills unset services with permissive stubs.
func newTestHandlers(d Deps) *Handlers {
	if d.Videos == nil {
		d.Videos = stubVideos{}
	}
	if d.Reactions == nil {
		d.Reactions = stubReactions{}
	}
	if d.Comments == nil {
		d.Comments = stubComments{}
	}
	if d.Recommend == nil {
		d.Recommend = stubRecommend{}
	}
	if d.Progress == nil {
		d.Progress = stubProgress{}
	}
	return New(d)
}

// newEngine mounts h the way the router does, with identity and idempotency
// middleware in front.
func newEngine(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity())
	r.GET("/videos", h.ListVideos)
	r.GET("/videos/:id", h.GetVideo)
	r.POST("/videos/:id/like", h.ToggleReaction)
	r.POST("/videos/:id/progress", h.RecordProgress)
	r.GET("/recommendations/:user_id", h.Recommendations)
	r.GET("/ws", h.WebSocket)

	cm := r.Group("/videos/:id/comments")
	cm.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	cm.GET("", h.ListComments)
	cm.POST("", h.PostComment)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
	if er.RequestID == "" {
		t.Fatalf("missing request_id in %+v", er)
	}
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }

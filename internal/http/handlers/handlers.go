// Package handlers – wiring
//
// Handlers are transport-thin: they parse path, query and body input, call a
// service through the narrow interfaces below, and translate results and
// errors into HTTP responses. Broadcasts to WebSocket clients happen here,
// after the service call succeeded; a dropped broadcast never fails a request.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/http/middleware"
	"github.com/tbourn/go-video-backend/internal/realtime"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/services"
	"github.com/tbourn/go-video-backend/internal/utils"
)

// VideoService serves catalog reads.
type VideoService interface {
	List(ctx context.Context, f repo.VideoFilter, page, pageSize int) ([]domain.VideoSummary, int64, error)
	Get(ctx context.Context, id int64) (*domain.VideoDetail, error)
}

// ReactionService toggles likes and dislikes.
type ReactionService interface {
	Toggle(ctx context.Context, userID, videoID int64, kind domain.ReactionKind) (services.ToggleResult, error)
}

// CommentService lists and posts comments.
type CommentService interface {
	Create(ctx context.Context, in services.NewComment) (*domain.Comment, bool, error)
	ListPage(ctx context.Context, videoID int64, page, pageSize int) ([]domain.CommentView, int64, error)
	Stats(ctx context.Context, videoID int64) (int64, *time.Time, error)
}

// RecommendationService produces per-user recommendations.
type RecommendationService interface {
	Recommend(ctx context.Context, userID int64, limit int) ([]domain.VideoSummary, services.Source, error)
}

// Broadcaster fans an event out to connected WebSocket clients.
type Broadcaster interface {
	BroadcastJSON(typ string, data any)
}

// Deps groups everything Handlers needs.
type Deps struct {
	Videos    VideoService
	Reactions ReactionService
	Comments  CommentService
	Recommend RecommendationService
	Progress  realtime.ProgressRecorder

	// Hub accepts WebSocket clients. Nil disables /ws.
	Hub *realtime.Hub
	// Broadcaster receives engagement events. Defaults to Hub.
	Broadcaster Broadcaster
	// Upgrader accepts WebSocket handshakes.
	Upgrader websocket.Upgrader

	RecommendDefaultLimit int
	RecommendMaxLimit     int
	// WSTimeout bounds each store write issued from a WebSocket message.
	WSTimeout time.Duration
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	Deps
	bc Broadcaster
}

// New returns Handlers bound to d.
func New(d Deps) *Handlers {
	if d.RecommendDefaultLimit <= 0 {
		d.RecommendDefaultLimit = 20
	}
	if d.RecommendMaxLimit < d.RecommendDefaultLimit {
		d.RecommendMaxLimit = d.RecommendDefaultLimit
	}
	h := &Handlers{Deps: d, bc: d.Broadcaster}
	if h.bc == nil && d.Hub != nil {
		h.bc = d.Hub
	}
	return h
}

func (h *Handlers) broadcast(typ string, data any) {
	if h.bc != nil {
		h.bc.BroadcastJSON(typ, data)
	}
}

// pathID parses the :name path parameter as a positive id.
func pathID(c *gin.Context, name string) (int64, bool) {
	return utils.ParseID(c.Param(name))
}

// callerID resolves the acting user: the X-User-ID identity wins, then an
// id carried in the request body.
func callerID(c *gin.Context, bodyID int64) (int64, bool) {
	if id, ok := middleware.UserIDFrom(c); ok {
		return id, true
	}
	return bodyID, bodyID > 0
}

// clampPagination parses page and page_size with defaults 1 and 20 and a cap
// of 100.
func clampPagination(c *gin.Context) (page, pageSize int) {
	page, pageSize, _ = utils.Page(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), 20),
		20, 100,
	)
	return page, pageSize
}

func trimmedQuery(c *gin.Context, key string) string {
	return strings.TrimSpace(c.Query(key))
}

// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, identity, logging/redaction, panic recovery,
// compression, metrics, timeouts, CORS, security headers, idempotency, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → identity → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/docs"
	"github.com/tbourn/go-video-backend/internal/config"
	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/http/handlers"
	"github.com/tbourn/go-video-backend/internal/http/middleware"
	"github.com/tbourn/go-video-backend/internal/realtime"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/services"
)

// reactionRepoShim adapts the repository free functions to the
// services.ReactionRepo interface expected by the EngagementLedger.
type reactionRepoShim struct{}

func (reactionRepoShim) LockVideo(ctx context.Context, db *gorm.DB, videoID int64) error {
	return repo.LockVideo(ctx, db, videoID)
}

func (reactionRepoShim) UserExists(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	return repo.UserExists(ctx, db, userID)
}

func (reactionRepoShim) GetReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) (*domain.Reaction, error) {
	return repo.GetReaction(ctx, db, userID, videoID)
}

func (reactionRepoShim) UpsertReaction(ctx context.Context, db *gorm.DB, userID, videoID int64, kind domain.ReactionKind) error {
	return repo.UpsertReaction(ctx, db, userID, videoID, kind)
}

func (reactionRepoShim) DeleteReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) error {
	return repo.DeleteReaction(ctx, db, userID, videoID)
}

func (reactionRepoShim) AdjustCounters(ctx context.Context, db *gorm.DB, videoID, likesDelta, dislikesDelta int64) error {
	return repo.AdjustCounters(ctx, db, videoID, likesDelta, dislikesDelta)
}

func (reactionRepoShim) GetCounters(ctx context.Context, db *gorm.DB, videoID int64) (domain.VideoCounters, error) {
	return repo.GetCounters(ctx, db, videoID)
}

// catalogRepoShim adapts the read-side queries to services.CatalogRepo.
type catalogRepoShim struct{}

func (catalogRepoShim) RecentHistory(ctx context.Context, db *gorm.DB, userID int64, n int) ([]domain.VideoSummary, error) {
	return repo.RecentHistory(ctx, db, userID, n)
}

func (catalogRepoShim) QueryByCategoryOrTag(ctx context.Context, db *gorm.DB, categories, tagSubstrings []string, limit int) ([]domain.VideoSummary, error) {
	return repo.QueryByCategoryOrTag(ctx, db, categories, tagSubstrings, limit)
}

func (catalogRepoShim) QueryTrending(ctx context.Context, db *gorm.DB, limit int) ([]domain.VideoSummary, error) {
	return repo.QueryTrending(ctx, db, limit)
}

var (
	corsMethods = []string{"GET", "POST", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match"}
	corsExpose  = []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed", "Retry-After"}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath. hub may be nil, in
// which case /ws answers 503 and engagement events are not broadcast.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: parse X-User-ID once for everything below
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter and gzip (WebSocket excluded)
//  7. Metrics
//  8. Per-request timeout (WebSocket excluded)
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per user/IP and read/write class, bypass on replay)
//  11. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	wsPath := path.Join("/", apiBase, "ws")

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Identity())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	// 1 MiB request bodies; responses compressed except on the upgrade path.
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{wsPath, "/metrics"})))

	r.Use(middleware.Metrics(wsPath))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.RequestTimeout(cfg.RequestTimeout, wsPath))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, videoID int64, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, videoID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP(),
		"/health", "/metrics", wsPath)
	r.Use(rl.Handler())

	useCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		EnablePolicy:    true,
		PrivatePrefixes: []string{path.Join("/", apiBase, "recommendations")},
		HTMLPrefixes:    []string{"/swagger"},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	watch := &services.WatchService{DB: db}
	d := handlers.Deps{
		Videos:    &services.VideoService{DB: db},
		Reactions: services.NewEngagementLedger(db, reactionRepoShim{}),
		Comments: &services.CommentService{
			DB:             db,
			MaxRunes:       cfg.CommentMaxRunes,
			IdempotencyTTL: cfg.IdempotencyTTL,
		},
		Recommend:             services.NewRecommendationEngine(db, catalogRepoShim{}),
		Progress:              watch,
		Upgrader:              realtime.NewUpgrader(wsOrigins(cfg)),
		RecommendDefaultLimit: cfg.RecommendDefaultLimit,
		RecommendMaxLimit:     cfg.RecommendMaxLimit,
		WSTimeout:             cfg.RequestTimeout,
		Hub:                   hub,
	}
	h := handlers.New(d)

	api := groupWithPrefix(r, apiBase)
	{
		// Videos
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)

		// Engagement
		api.POST("/videos/:id/like", h.ToggleReaction)
		api.GET("/videos/:id/comments", h.ListComments)
		api.POST("/videos/:id/comments", h.PostComment)
		api.POST("/videos/:id/progress", h.RecordProgress)

		// Recommendations
		api.GET("/recommendations/:user_id", h.Recommendations)

		// Realtime
		api.GET("/ws", h.WebSocket)
	}
}

// useCORS installs the CORS posture. With no configured origins every origin
// is allowed (credentials off); otherwise the allowlist is echoed.
func useCORS(r *gin.Engine, origins []string) {
	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    corsExpose,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// wsOrigins returns the WebSocket origin allowlist: WS_ALLOWED_ORIGINS, then
// the CORS allowlist, then any origin.
func wsOrigins(cfg config.Config) []string {
	switch {
	case len(cfg.WSAllowedOrigins) > 0:
		return cfg.WSAllowedOrigins
	case len(cfg.CORS.AllowedOrigins) > 0:
		return cfg.CORS.AllowedOrigins
	}
	return []string{"*"}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

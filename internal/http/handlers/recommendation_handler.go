package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/http/middleware"
	"github.com/tbourn/go-video-backend/internal/services"
)

// RecommendationsResponse is the recommendation list and how it was built.
type RecommendationsResponse struct {
	Recommendations []domain.VideoSummary `json:"recommendations"`
	// Source is "personalized" or "trending".
	Source services.Source `json:"source" example:"personalized"`
}

// Recommendations godoc
// @ID          getRecommendations
// @Summary     Recommend videos for a user
// @Description Ranks videos matching the categories and tags of the user's recent history, falling back to trending.
// @Tags        Recommendations
// @Produce     json
//
// @Param       user_id  path   int  true  "User ID"  minimum(1)
// @Param       limit    query  int  false "Maximum results (clamped to the configured max)"  minimum(1) default(20)
//
// @Success     200  {object} handlers.RecommendationsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /recommendations/{user_id} [get]
func (h *Handlers) Recommendations(c *gin.Context) {
	userID, okID := pathID(c, "user_id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a positive integer")
		return
	}
	limit := h.RecommendDefaultLimit
	if raw := trimmedQuery(c, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, h.RecommendMaxLimit)
	}

	items, src, err := h.Recommend.Recommend(c.Request.Context(), userID, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Debug().
		Int64("user_id", userID).
		Str("source", string(src)).
		Int("results", len(items)).
		Msg("recommendations served")
	ok(c, http.StatusOK, RecommendationsResponse{Recommendations: items, Source: src})
}

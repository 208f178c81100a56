// Reaction HTTP handler.
//
//   - POST /videos/{id}/like  (toggle like/dislike)
//
// A successful toggle is broadcast to WebSocket clients as reaction_updated.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/realtime"
)

// ToggleReactionRequest is the JSON payload for a like/dislike toggle.
type ToggleReactionRequest struct {
	// UserID is used when the X-User-ID header is absent.
	UserID int64 `json:"user_id" example:"1"`
	// Type is "like" or "dislike".
	Type domain.ReactionKind `json:"type" binding:"required" example:"like"`
}

type reactionEvent struct {
	VideoID  int64               `json:"video_id"`
	UserID   int64               `json:"user_id"`
	Action   domain.ToggleAction `json:"action"`
	Type     domain.ReactionKind `json:"type"`
	Likes    int64               `json:"likes"`
	Dislikes int64               `json:"dislikes"`
}

// ToggleReaction godoc
// @ID          toggleReaction
// @Summary     Like or dislike a video
// @Description Same type again removes the reaction, the other type switches it.
// @Tags        Reactions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  false "Acting user (overrides body user_id)"  example(1)
// @Param       id         path    int  true  "Video ID"  minimum(1)
// @Param       body       body    handlers.ToggleReactionRequest  true  "Reaction"
//
// @Success     200  {object} services.ToggleResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Video or user not found"
// @Failure     409  {object} handlers.ErrorResponse "Concurrent conflicting update"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /videos/{id}/like [post]
func (h *Handlers) ToggleReaction(c *gin.Context) {
	videoID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "video id must be a positive integer")
		return
	}
	var req ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type required ('like' or 'dislike')")
		return
	}
	userID, okUser := callerID(c, req.UserID)
	if !okUser {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id required")
		return
	}

	res, err := h.Reactions.Toggle(c.Request.Context(), userID, videoID, req.Type)
	if err != nil {
		failErr(c, err)
		return
	}

	h.broadcast(realtime.TypeReactionUpdated, reactionEvent{
		VideoID:  videoID,
		UserID:   userID,
		Action:   res.Action,
		Type:     res.Kind,
		Likes:    res.Likes,
		Dislikes: res.Dislikes,
	})
	ok(c, http.StatusOK, res)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecordProgressRequest is the HTTP form of the watch_progress event.
type RecordProgressRequest struct {
	// UserID is used when the X-User-ID header is absent.
	UserID int64 `json:"user_id" example:"1"`
	// WatchTime is the playback position in seconds.
	WatchTime *int64 `json:"watch_time" binding:"required" example:"120"`
	Completed bool   `json:"completed" example:"false"`
}

// RecordProgress godoc
// @ID          recordProgress
// @Summary     Save watch progress
// @Description Upserts the caller's history row for the video. Feeds recommendations.
// @Tags        History
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  false "Acting user (overrides body user_id)"  example(1)
// @Param       id         path    int  true  "Video ID"  minimum(1)
// @Param       body       body    handlers.RecordProgressRequest  true  "Progress"
//
// @Success     200  {object} domain.WatchHistory
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Video or user not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /videos/{id}/progress [post]
func (h *Handlers) RecordProgress(c *gin.Context) {
	videoID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "video id must be a positive integer")
		return
	}
	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "watch_time required")
		return
	}
	userID, okUser := callerID(c, req.UserID)
	if !okUser {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id required")
		return
	}

	wh, err := h.Progress.RecordProgress(c.Request.Context(), userID, videoID, *req.WatchTime, req.Completed)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, wh)
}

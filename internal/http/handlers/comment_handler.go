// Comment HTTP handlers.
//
//   - GET  /videos/{id}/comments  (newest first, paginated, weak ETag)
//   - POST /videos/{id}/comments  (create; Idempotency-Key aware)
//
// Idempotency:
// When the client supplies an Idempotency-Key and an earlier request with
// the same (user, video, key) succeeded, the stored comment is returned with
// 200 and `Idempotency-Replayed: true` instead of creating a second one.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/http/middleware"
	"github.com/tbourn/go-video-backend/internal/realtime"
	"github.com/tbourn/go-video-backend/internal/services"
)

// PostCommentRequest is the JSON payload for posting a comment.
type PostCommentRequest struct {
	// UserID is used when the X-User-ID header is absent.
	UserID int64 `json:"user_id" example:"1"`
	// Text is the comment body. It is trimmed and NFC-normalized.
	Text string `json:"text" binding:"required" example:"Great explanation!"`
	// ReplyTo optionally names a comment on the same video.
	ReplyTo *int64 `json:"reply_to,omitempty" example:"12"`
}

// ListCommentsResponse contains a page of comments and pagination metadata.
type ListCommentsResponse struct {
	Comments   []domain.CommentView `json:"comments"`
	Pagination Pagination           `json:"pagination"`
}

type commentEvent struct {
	VideoID   int64     `json:"video_id"`
	CommentID int64     `json:"comment_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	ReplyTo   *int64    `json:"reply_to,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ListComments godoc
// @ID          listComments
// @Summary     List comments on a video
// @Description Returns comments newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Comments
// @Produce     json
//
// @Param       id             path    int     true  "Video ID"  minimum(1)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCommentsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Video not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /videos/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	videoID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "video id must be a positive integer")
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.Comments.Stats(ctx, videoID); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"comments:%d:%d:%d:%d:%d"`, videoID, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.Comments.ListPage(ctx, videoID, page, pageSize)
	if err != nil {
		c.Writer.Header().Del("ETag")
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListCommentsResponse{
		Comments:   items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// PostComment godoc
// @ID          postComment
// @Summary     Comment on a video
// @Description Creates a comment and increments the video's comments_count.
// @Description Supports idempotency via the Idempotency-Key header (same key → same comment).
// @Tags        Comments
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  int     false "Acting user (overrides body user_id)"  example(1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id               path    int     true  "Video ID"  minimum(1)
// @Param       body             body    handlers.PostCommentRequest  true  "Comment"
//
// @Success     201  {object} domain.Comment "Created"
// @Success     200  {object} domain.Comment "Replayed"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Video, user or parent comment not found"
// @Failure     409  {object} handlers.ErrorResponse "Concurrent conflicting update"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /videos/{id}/comments [post]
func (h *Handlers) PostComment(c *gin.Context) {
	videoID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "video id must be a positive integer")
		return
	}
	var req PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	userID, okUser := callerID(c, req.UserID)
	if !okUser {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id required")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	cm, replayed, err := h.Comments.Create(c.Request.Context(), services.NewComment{
		UserID:         userID,
		VideoID:        videoID,
		Text:           req.Text,
		ReplyTo:        req.ReplyTo,
		IdempotencyKey: key,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, cm)
		return
	}

	middleware.LoggerFrom(c).Info().
		Int64("video_id", videoID).
		Int64("comment_id", cm.ID).
		Msg("comment posted")
	h.broadcast(realtime.TypeNewComment, commentEvent{
		VideoID:   videoID,
		CommentID: cm.ID,
		UserID:    userID,
		Text:      cm.Text,
		ReplyTo:   cm.ReplyTo,
		Timestamp: cm.CreatedAt,
	})
	ok(c, http.StatusCreated, cm)
}

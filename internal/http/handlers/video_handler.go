// Video HTTP handlers.
//
//   - GET /videos       (public catalog, filtered and paginated)
//   - GET /videos/{id}  (detail; counts a view)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/utils"
)

// ListVideosResponse wraps a page of videos and pagination information.
type ListVideosResponse struct {
	Videos     []domain.VideoSummary `json:"videos"`
	Pagination Pagination            `json:"pagination"`
}

// ListVideos godoc
// @ID          listVideos
// @Summary     List public videos
// @Description Returns public videos newest first. search matches title, description and tags.
// @Tags        Videos
// @Produce     json
//
// @Param       category   query  string  false "Exact category"                example(Education)
// @Param       search     query  string  false "Substring of title, description or tags"
// @Param       user_id    query  int     false "Channel (uploader) id"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListVideosResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /videos [get]
func (h *Handlers) ListVideos(c *gin.Context) {
	f := repo.VideoFilter{
		Category: trimmedQuery(c, "category"),
		Search:   trimmedQuery(c, "search"),
	}
	if raw := trimmedQuery(c, "user_id"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be a positive integer")
			return
		}
		f.UserID = id
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.Videos.List(c.Request.Context(), f, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListVideosResponse{
		Videos:     items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetVideo godoc
// @ID          getVideo
// @Summary     Get a video
// @Description Returns the video with its channel block. Every call increments views_count.
// @Tags        Videos
// @Produce     json
//
// @Param       id  path  int  true  "Video ID"  minimum(1)
//
// @Success     200  {object} domain.VideoDetail
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Video not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /videos/{id} [get]
func (h *Handlers) GetVideo(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "video id must be a positive integer")
		return
	}
	v, err := h.Videos.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/http/middleware"
	"github.com/tbourn/go-video-backend/internal/realtime"
	"github.com/tbourn/go-video-backend/internal/utils"
)

// WebSocket godoc
// @ID          websocket
// @Summary     Realtime channel
// @Description Upgrades to a WebSocket. The server greets with `status`, answers `ping` with `pong`,
// @Description saves `watch_progress` and replies `progress_saved`, and pushes `reaction_updated`
// @Description and `new_comment` events.
// @Tags        Realtime
//
// @Param       user_id  query  int  false "Default user for watch_progress messages"
//
// @Success     101  {string} string "Switching Protocols"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     503  {object} handlers.ErrorResponse "Realtime unavailable"
// @Router      /ws [get]
func (h *Handlers) WebSocket(c *gin.Context) {
	if h.Hub == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "realtime channel unavailable")
		return
	}
	userID, _ := middleware.UserIDFrom(c)
	if raw := trimmedQuery(c, "user_id"); raw != "" && userID == 0 {
		id, okID := utils.ParseID(raw)
		if !okID {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be a positive integer")
			return
		}
		userID = id
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := realtime.NewClient(c.Request.Context(), h.Hub, conn, realtime.ClientOptions{
		Recorder: h.Progress,
		UserID:   userID,
		Timeout:  h.WSTimeout,
	})
	if !client.Join() {
		middleware.LoggerFrom(c).Warn().Msg("websocket hub stopped, connection closed")
	}
}

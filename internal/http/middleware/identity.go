// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's user id. There is no authentication layer:
// clients identify themselves with the X-User-ID header, which is parsed once
// here and stored in the Gin context for handlers, rate limiting and logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/utils"
)

// HeaderUserID carries the caller's numeric user id.
const HeaderUserID = "X-User-ID"

// ctxKeyUserID is the Gin context key holding the caller's int64 user id.
const ctxKeyUserID = "userID"

// Identity parses X-User-ID into the context. A missing header is allowed
// (the request is anonymous); a malformed one is rejected with 400.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			c.Next()
			return
		}
		id, ok := utils.ParseID(raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "X-User-ID must be a positive integer",
			})
			return
		}
		c.Set(ctxKeyUserID, id)
		c.Next()
	}
}

// UserIDFrom returns the caller's user id set by Identity.
func UserIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

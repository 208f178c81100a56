// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for comment posting. It validates
// an Idempotency-Key request header, optionally performs a lookup to detect
// previously completed requests, and annotates the request context so
// downstream handlers can:
//   - read the normalized key (GetIdempotencyKey)
//   - detect replayed requests (IsReplay)
//   - bypass rate limiting when a replay is served (via an internal flag)
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/utils"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated key stashed by
// IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a completed one.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid result exists for
// (userID, videoID, key) at now. Errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, userID, videoID int64, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present and
// stashes it. With a lookup, a known (user, video, key) triple marks the
// request as a replay and lets it bypass rate limiting. The video id comes
// from the :id route parameter and the user id from Identity.
//
// Replays are still served by the handler; this middleware never writes a
// cached payload itself.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid, okUser := UserIDFrom(c)
			vid, okVideo := utils.ParseID(c.Param("id"))
			if okUser && okVideo {
				if exists, _ := lookup(c.Request.Context(), uid, vid, key, time.Now().UTC()); exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}

		c.Next()
	}
}

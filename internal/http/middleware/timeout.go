package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds each request's context with d. Paths starting with
// any of skipPrefixes (long-lived connections such as /ws) are left alone.
// Store calls observe the deadline and fail with an unavailable error.
func RequestTimeout(d time.Duration, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		for _, p := range skipPrefixes {
			if p != "" && strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

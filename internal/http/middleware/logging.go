// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request ID injector, the panic recovery handler and
// access to the request-scoped logger attached by RedactingLogger.
//
// Recommended order: RequestID, Identity, RedactingLogger, Recovery, so that
// panics and errors carry the correlation and user ids.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// loggerKey holds the request-scoped *zerolog.Logger.
	loggerKey = "logger"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
	// maxRequestIDLength bounds client-supplied ids echoed into logs and
	// WebSocket-triggered broadcasts.
	maxRequestIDLength = 128
)

// RequestID reuses an incoming X-Request-ID or generates a UUIDv4, echoes it
// on the response and stores it under "requestID". Incoming ids that are too
// long or contain non-printable ASCII are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation id set by RequestID.
func RequestIDFrom(c *gin.Context) string {
	return asString(c.Value(requestIDKey))
}

// Recovery converts panics into a JSON 500 with the request id and logs the
// stack. If the response was already started, only the status is set.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid := RequestIDFrom(c)
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", rid).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header(requestIDHeader, rid)
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": rid,
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// none was attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, appending an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

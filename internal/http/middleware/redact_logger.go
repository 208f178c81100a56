// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger. It attaches a
// request-scoped zerolog.Logger for handlers and emits one structured line per
// request with obvious PII scrubbed from the query string and headers.
//
// Bodies are never logged. Emails, phone numbers and UUIDs are replaced with
// placeholders; Authorization, Cookie and Set-Cookie plus any configured
// headers are fully masked.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders names extra headers whose values are replaced with
// "[REDACTED]" (case-insensitive).
type RedactOptions struct {
	MaskHeaders []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so it cannot eat the hex groups of a UUID.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// redact scrubs s. UUIDs go first so the phone pattern never matches their
// digit runs.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// RedactingLogger returns the access-log middleware. Level is info, warn for
// 4xx, error for 5xx or when handlers recorded gin errors.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		lc := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path)
		if uid, ok := UserIDFrom(c); ok {
			lc = lc.Int64("user_id", uid)
		}
		l := lc.Logger()
		c.Set(loggerKey, &l)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = l.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= 400:
			ev = l.Warn()
		}

		ev.
			Str("query", truncate(redact(c.Request.URL.RawQuery), maxQueryLogLength)).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}

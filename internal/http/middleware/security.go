package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// apiCSP locks JSON responses down completely; nothing they return is
	// meant to be rendered or framed.
	apiCSP = "default-src 'none'; frame-ancestors 'none'"

	// playerPolicy denies sensor and payment features while keeping the
	// features an embedded player needs on same-origin pages.
	playerPolicy = "autoplay=(self), fullscreen=(self), picture-in-picture=(self), " +
		"camera=(), microphone=(), geolocation=(), payment=()"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests only.
	EnableHSTS bool
	// HSTSMaxAge defaults to 180 days when <= 0.
	HSTSMaxAge time.Duration
	// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
	// PrivatePrefixes lists path prefixes whose responses are per-user and
	// must never be stored by shared caches (recommendations).
	PrivatePrefixes []string
	// HTMLPrefixes lists path prefixes serving HTML (Swagger UI) that must
	// not receive the API content security policy.
	HTMLPrefixes []string
}

// SecurityHeaders attaches hardening headers to every response. Public video
// and comment reads keep their cache headers so ETag revalidation works; only
// PrivatePrefixes get no-store.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hsts := "max-age=" + strconv.FormatInt(int64(maxAge/time.Second), 10) + "; includeSubDomains"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		p := c.Request.URL.Path

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if hasAnyPrefix(p, opt.HTMLPrefixes) {
			h.Set("X-Frame-Options", "SAMEORIGIN")
		} else {
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", apiCSP)
		}

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", playerPolicy)
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if hasAnyPrefix(p, opt.PrivatePrefixes) {
			h.Set("Cache-Control", "private, no-store")
			h.Add("Vary", HeaderUserID)
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		c.Next()
	}
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		if pre != "" && strings.HasPrefix(p, pre) {
			return true
		}
	}
	return false
}

// isHTTPS reports whether the request arrived over TLS directly or through a
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

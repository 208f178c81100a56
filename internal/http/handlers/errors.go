// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and give clients a stable, machine-readable
// taxonomy alongside the human-readable message. Service errors are mapped to
// a status and code in one place (failErr) so every endpoint reports the same
// failure the same way.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "video not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeUnavailable      = "unavailable"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// retryAfterSeconds is advertised on 503 responses.
const retryAfterSeconds = "1"

// failErr maps a service error onto the error envelope. Internal errors get
// an opaque message; the cause is logged by fail.
func failErr(c *gin.Context, err error) {
	switch services.Classify(err) {
	case services.KindInvalidArgument:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case services.KindNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case services.KindConflict:
		fail(c, http.StatusConflict, ErrCodeConflict, "conflicting concurrent update, retry")
	case services.KindUnavailable:
		c.Header("Retry-After", retryAfterSeconds)
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "temporarily unavailable, retry")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

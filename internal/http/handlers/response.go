// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint. Errors
// always use the ErrorResponse envelope with a stable code; 5xx responses are
// logged through the request-scoped logger.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "video not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-video-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"video not found"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code)
		if last := c.Errors.Last(); last != nil {
			ev = ev.Err(last.Err)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

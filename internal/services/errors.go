// Package services defines the business logic for videos, comments,
// reactions, watch progress and recommendations. This file centralizes
// service-level error values and their classification so that handlers can
// translate them into HTTP status codes consistently.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbourn/go-video-backend/internal/repo"
)

// InvalidArgument errors.
var (
	// ErrInvalidReaction is returned when a reaction type is not like or dislike.
	ErrInvalidReaction = errors.New("reaction type must be 'like' or 'dislike'")

	// ErrInvalidLimit is returned when a recommendation limit is not positive.
	ErrInvalidLimit = errors.New("limit must be a positive integer")

	// ErrInvalidID is returned for non-positive user, video or comment ids.
	ErrInvalidID = errors.New("id must be a positive integer")

	// ErrEmptyComment is returned when comment text is blank after trimming.
	ErrEmptyComment = errors.New("comment text is empty")

	// ErrCommentTooLong is returned when comment text exceeds the rune limit.
	ErrCommentTooLong = errors.New("comment text too long")

	// ErrInvalidProgress is returned for a negative watch time.
	ErrInvalidProgress = errors.New("watch_time must be >= 0")
)

// NotFound errors.
var (
	ErrVideoNotFound         = errors.New("video not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrParentCommentNotFound = errors.New("reply_to comment not found on this video")
)

// ErrStoreConflict is returned when the store rejects a write because of a
// concurrent conflicting write (unique violation).
var ErrStoreConflict = errors.New("conflicting concurrent update")

// ErrUnavailable wraps deadline expiry, cancellation and lock timeouts. The
// operation may be retried.
var ErrUnavailable = errors.New("store temporarily unavailable")

// ErrorKind is the coarse category of a service error.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidArgument
	KindNotFound
	KindConflict
	KindUnavailable
)

// Classify maps err onto its ErrorKind. Unknown errors are KindInternal.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidReaction),
		errors.Is(err, ErrInvalidLimit),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrEmptyComment),
		errors.Is(err, ErrCommentTooLong),
		errors.Is(err, ErrInvalidProgress):
		return KindInvalidArgument
	case errors.Is(err, ErrVideoNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrParentCommentNotFound):
		return KindNotFound
	case errors.Is(err, ErrStoreConflict):
		return KindConflict
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	}
	return KindInternal
}

// storeErr wraps a raw store error with its taxonomy sentinel while keeping
// the original in the chain. A failure observed after ctx ended is reported as
// unavailable whatever the driver said.
func storeErr(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil,
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		repo.IsBusy(err):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case repo.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrStoreConflict, err)
	}
	return err
}

// Package services – CommentService
//
// CommentService lists and posts comments. Posting inserts the comment and
// bumps videos.comments_count in one transaction. A client-supplied
// idempotency key makes the post safe to retry: the first success stores the
// comment id under (user, video, key) and later attempts replay that comment.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CommentService coordinates comment persistence.
type CommentService struct {
	DB *gorm.DB

	// MaxRunes caps comment length after normalization. <= 0 disables the cap.
	MaxRunes int
	// IdempotencyTTL is how long a key is remembered.
	IdempotencyTTL time.Duration
}

// NewComment is the input of CommentService.Create.
type NewComment struct {
	UserID  int64
	VideoID int64
	Text    string
	ReplyTo *int64
	// IdempotencyKey is optional; empty disables replay detection.
	IdempotencyKey string
}

// normalizeComment trims and NFC-normalizes text so visually identical
// inputs are stored identically.
func normalizeComment(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Create validates and stores a comment. The bool result is true when an
// earlier request with the same idempotency key already created it.
func (s *CommentService) Create(ctx context.Context, in NewComment) (*domain.Comment, bool, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int64("user.id", in.UserID),
			attribute.Int64("video.id", in.VideoID),
			attribute.Bool("idempotent", in.IdempotencyKey != ""),
		),
	)
	defer span.End()

	if in.UserID <= 0 || in.VideoID <= 0 || (in.ReplyTo != nil && *in.ReplyTo <= 0) {
		return nil, false, ErrInvalidID
	}
	text := normalizeComment(in.Text)
	if text == "" {
		return nil, false, ErrEmptyComment
	}
	if s.MaxRunes > 0 && utf8.RuneCountInString(text) > s.MaxRunes {
		return nil, false, ErrCommentTooLong
	}

	if in.IdempotencyKey != "" {
		if c, err := s.replay(ctx, in); err == nil {
			return c, true, nil
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, false, storeErr(ctx, err)
		}
	}

	var created *domain.Comment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ok, err := repo.VideoExists(ctx, tx, in.VideoID); err != nil {
			return err
		} else if !ok {
			return ErrVideoNotFound
		}
		if ok, err := repo.UserExists(ctx, tx, in.UserID); err != nil {
			return err
		} else if !ok {
			return ErrUserNotFound
		}
		if in.ReplyTo != nil {
			parent, err := repo.GetComment(ctx, tx, *in.ReplyTo)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && parent.VideoID != in.VideoID) {
				return ErrParentCommentNotFound
			}
			if err != nil {
				return err
			}
		}

		c, err := repo.CreateComment(ctx, tx, in.VideoID, in.UserID, text, in.ReplyTo)
		if err != nil {
			return err
		}
		if err := repo.IncrementCommentsCount(ctx, tx, in.VideoID); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, in.UserID, in.VideoID, in.IdempotencyKey, c.ID, http.StatusCreated, s.ttl()); err != nil {
				return err
			}
		}
		created = c
		return nil
	})
	if err == nil {
		return created, false, nil
	}

	// A concurrent request with the same key committed first: serve its comment.
	if errors.Is(err, repo.ErrDuplicate) {
		if c, rerr := s.replay(ctx, in); rerr == nil {
			return c, true, nil
		}
		return nil, false, ErrStoreConflict
	}
	if Classify(err) != KindInternal {
		return nil, false, err
	}
	return nil, false, storeErr(ctx, err)
}

func (s *CommentService) replay(ctx context.Context, in NewComment) (*domain.Comment, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, in.UserID, in.VideoID, in.IdempotencyKey, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return repo.GetComment(ctx, s.DB, rec.CommentID)
}

func (s *CommentService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// ListPage returns a page of a video's comments, newest first, and the total.
func (s *CommentService) ListPage(ctx context.Context, videoID int64, page, pageSize int) ([]domain.CommentView, int64, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int64("video.id", videoID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if videoID <= 0 {
		return nil, 0, ErrInvalidID
	}
	_, size, offset := utils.Page(page, pageSize, 20, 100)

	ok, err := repo.VideoExists(ctx, s.DB, videoID)
	if err != nil {
		return nil, 0, storeErr(ctx, err)
	}
	if !ok {
		return nil, 0, ErrVideoNotFound
	}

	total, err := repo.CountComments(ctx, s.DB, videoID)
	if err != nil {
		return nil, 0, storeErr(ctx, err)
	}
	if total == 0 {
		return []domain.CommentView{}, 0, nil
	}
	items, err := repo.ListCommentsPage(ctx, s.DB, videoID, offset, size)
	if err != nil {
		return nil, 0, storeErr(ctx, err)
	}
	return items, total, nil
}

// Stats returns the comment count and newest comment time of a video, for
// conditional GET handling.
func (s *CommentService) Stats(ctx context.Context, videoID int64) (int64, *time.Time, error) {
	count, maxAt, err := repo.CommentsStats(ctx, s.DB, videoID)
	if err != nil {
		return 0, nil, storeErr(ctx, err)
	}
	return count, maxAt, nil
}

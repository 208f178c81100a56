// Package services – EngagementLedger
//
// This file implements the like/dislike toggle. Each call changes exactly one
// row in the likes table and applies the matching counter deltas to the video,
// all inside one transaction, so that between toggles a video's likes_count
// and dislikes_count equal the number of like and dislike rows for it.
//
// Transitions for (user, video, kind):
//
//	no reaction      -> insert kind,        counter(kind) += 1       -> added
//	same kind        -> delete,             counter(kind) -= 1       -> removed
//	the other kind   -> update in place,    new += 1, old -= 1       -> changed
//
// The transaction starts by write-locking the video row. Toggles on the same
// video therefore run one after another, and the existence check and the lock
// are the same statement.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReactionRepo defines the store primitives required by EngagementLedger.
// Every method receives the transaction handle it must run on.
type ReactionRepo interface {
	// LockVideo write-locks the video row; repo.ErrNotFound if it is missing.
	LockVideo(ctx context.Context, db *gorm.DB, videoID int64) error

	// UserExists reports whether the user row exists.
	UserExists(ctx context.Context, db *gorm.DB, userID int64) (bool, error)

	// GetReaction returns the current reaction or repo.ErrNotFound.
	GetReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) (*domain.Reaction, error)

	// UpsertReaction inserts a reaction or overwrites its kind in place.
	UpsertReaction(ctx context.Context, db *gorm.DB, userID, videoID int64, kind domain.ReactionKind) error

	// DeleteReaction removes the reaction row.
	DeleteReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) error

	// AdjustCounters applies both deltas in one statement.
	AdjustCounters(ctx context.Context, db *gorm.DB, videoID, likesDelta, dislikesDelta int64) error

	// GetCounters reads likes_count and dislikes_count.
	GetCounters(ctx context.Context, db *gorm.DB, videoID int64) (domain.VideoCounters, error)
}

// ToggleResult is the outcome of a toggle plus the post-toggle counters, read
// inside the same transaction.
type ToggleResult struct {
	Action   domain.ToggleAction `json:"action"`
	Kind     domain.ReactionKind `json:"type"`
	Likes    int64               `json:"likes"`
	Dislikes int64               `json:"dislikes"`
}

// EngagementLedger owns reaction rows and the per-video reaction counters.
type EngagementLedger struct {
	DB   *gorm.DB
	Repo ReactionRepo
}

// NewEngagementLedger constructs an EngagementLedger.
func NewEngagementLedger(db *gorm.DB, r ReactionRepo) *EngagementLedger {
	return &EngagementLedger{DB: db, Repo: r}
}

// Toggle flips userID's reaction of kind on videoID. It returns
// ErrInvalidReaction for an unknown kind, ErrInvalidID for non-positive ids,
// ErrVideoNotFound / ErrUserNotFound for missing rows and ErrUnavailable when
// the deadline expires or the store lock cannot be taken. On any error nothing
// is committed. Toggle does not retry.
func (l *EngagementLedger) Toggle(ctx context.Context, userID, videoID int64, kind domain.ReactionKind) (ToggleResult, error) {
	tr := otel.Tracer("services/EngagementLedger")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("video.id", videoID),
			attribute.String("reaction.kind", string(kind)),
		),
	)
	defer span.End()

	if !kind.Valid() {
		return ToggleResult{}, ErrInvalidReaction
	}
	if userID <= 0 || videoID <= 0 {
		return ToggleResult{}, ErrInvalidID
	}

	var res ToggleResult
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.Repo.LockVideo(ctx, tx, videoID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrVideoNotFound
			}
			return err
		}
		ok, err := l.Repo.UserExists(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}

		current, err := l.Repo.GetReaction(ctx, tx, userID, videoID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		var dLikes, dDislikes int64
		switch {
		case current == nil:
			if err := l.Repo.UpsertReaction(ctx, tx, userID, videoID, kind); err != nil {
				return err
			}
			dLikes, dDislikes = kind.Deltas()
			res.Action = domain.ToggleAdded
		case current.Type == kind:
			if err := l.Repo.DeleteReaction(ctx, tx, userID, videoID); err != nil {
				return err
			}
			dLikes, dDislikes = kind.Deltas()
			dLikes, dDislikes = -dLikes, -dDislikes
			res.Action = domain.ToggleRemoved
		default:
			if err := l.Repo.UpsertReaction(ctx, tx, userID, videoID, kind); err != nil {
				return err
			}
			addL, addD := kind.Deltas()
			subL, subD := current.Type.Deltas()
			dLikes, dDislikes = addL-subL, addD-subD
			res.Action = domain.ToggleChanged
		}

		if err := l.Repo.AdjustCounters(ctx, tx, videoID, dLikes, dDislikes); err != nil {
			return err
		}
		c, err := l.Repo.GetCounters(ctx, tx, videoID)
		if err != nil {
			return err
		}
		res.Kind = kind
		res.Likes, res.Dislikes = c.LikesCount, c.DislikesCount
		return nil
	})
	if err != nil {
		if Classify(err) == KindInternal {
			err = storeErr(ctx, err)
		}
		span.RecordError(err)
		return ToggleResult{}, err
	}

	span.SetAttributes(attribute.String("reaction.action", string(res.Action)))
	reactionToggles.WithLabelValues(string(res.Action), string(kind)).Inc()
	return res, nil
}

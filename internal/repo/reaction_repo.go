// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the reaction and counter primitives the
// engagement ledger composes inside a single transaction.
//
// None of these functions open a transaction of their own; callers pass the
// *gorm.DB handed to them by db.Transaction so that the reaction row change
// and the counter deltas commit or roll back together.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// LockVideo takes a write lock on the video row with a no-op UPDATE. On SQLite
// this acquires the database write lock for the rest of the transaction; on
// Postgres it locks the row. It returns ErrNotFound if the video is missing.
func LockVideo(ctx context.Context, db *gorm.DB, videoID int64) error {
	res := db.WithContext(ctx).
		Exec("UPDATE videos SET likes_count = likes_count WHERE id = ?", videoID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserExists reports whether a user row with userID exists.
func UserExists(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// GetReaction returns the user's reaction on a video, or ErrNotFound.
func GetReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) (*domain.Reaction, error) {
	var r domain.Reaction
	err := db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertReaction inserts the reaction or, if the (user_id, video_id) pair
// already has one, overwrites its type in place.
func UpsertReaction(ctx context.Context, db *gorm.DB, userID, videoID int64, kind domain.ReactionKind) error {
	r := &domain.Reaction{UserID: userID, VideoID: videoID, Type: kind}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type"}),
		}).
		Create(r).Error
}

// DeleteReaction removes the user's reaction on a video.
// It returns ErrNotFound if there was nothing to delete.
func DeleteReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&domain.Reaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustCounters applies both counter deltas to a video in one statement.
// The likes_count/dislikes_count >= 0 checks reject a delta that would drive
// a counter negative.
func AdjustCounters(ctx context.Context, db *gorm.DB, videoID, likesDelta, dislikesDelta int64) error {
	if likesDelta == 0 && dislikesDelta == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", videoID).
		UpdateColumns(map[string]any{
			"likes_count":    gorm.Expr("likes_count + ?", likesDelta),
			"dislikes_count": gorm.Expr("dislikes_count + ?", dislikesDelta),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCounters reads the current like/dislike counters of a video.
func GetCounters(ctx context.Context, db *gorm.DB, videoID int64) (domain.VideoCounters, error) {
	var c domain.VideoCounters
	res := db.WithContext(ctx).
		Model(&domain.Video{}).
		Select("likes_count, dislikes_count").
		Where("id = ?", videoID).
		Scan(&c)
	if res.Error != nil {
		return domain.VideoCounters{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.VideoCounters{}, ErrNotFound
	}
	return c, nil
}

// CountReactions returns how many reaction rows of kind exist for a video.
func CountReactions(ctx context.Context, db *gorm.DB, videoID int64, kind domain.ReactionKind) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Reaction{}).
		Where("video_id = ? AND type = ?", videoID, kind).
		Count(&n).Error
	return n, err
}

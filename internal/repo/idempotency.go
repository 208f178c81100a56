// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to make comment posting safe to retry.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// GetIdempotency returns a non-expired record for (userID, videoID, key) or
// ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, videoID int64, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND video_id = ? AND key = ? AND expires_at > ?", userID, videoID, key, now).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record pointing at commentID and returns
// ErrDuplicate on unique violation. An expired record for the same key that
// the purge has not reached yet is removed first, so the key can be reused.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, videoID int64, key string, commentID int64, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).
		Where("user_id = ? AND video_id = ? AND key = ? AND expires_at <= ?", userID, videoID, key, now).
		Delete(&domain.Idempotency{}).Error; err != nil {
		return nil, err
	}
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		VideoID:   videoID,
		Key:       key,
		CommentID: commentID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records that expired before now and returns
// how many were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

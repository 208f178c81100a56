// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// CommentsStats returns the number of comments on a video and the newest
// CreatedAt among them. When the video has no comments, the returned count is
// 0 and maxCreatedAt is nil.
func CommentsStats(ctx context.Context, db *gorm.DB, videoID int64) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Comment{}).Where("video_id = ?", videoID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides catalog listing and video detail queries.
//
// Functions:
//
//   - ListVideosPage(ctx, db, filter, offset, limit) -> []domain.VideoSummary, error
//     Public videos matching the filter, newest upload first.
//
//   - CountVideos(ctx, db, filter) -> (int64, error)
//     Total matching public videos, for pagination metadata.
//
//   - GetVideo(ctx, db, id) -> *domain.VideoDetail, error
//     A single video with its channel, or ErrNotFound.
//
//   - IncrementViews(ctx, db, id) -> error
//     Atomically bumps views_count.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// VideoFilter narrows the public catalog listing. Zero values mean "any".
type VideoFilter struct {
	Category string
	Search   string // substring of title, description or tags
	UserID   int64
}

func (f VideoFilter) apply(q *gorm.DB) *gorm.DB {
	q = q.Where("videos.privacy = ?", "public")
	if f.Category != "" {
		q = q.Where("videos.category = ?", f.Category)
	}
	if f.Search != "" {
		p := "%" + escapeLike(f.Search) + "%"
		q = q.Where(`(videos.title LIKE ? ESCAPE '\' OR videos.description LIKE ? ESCAPE '\' OR videos.tags LIKE ? ESCAPE '\')`, p, p, p)
	}
	if f.UserID > 0 {
		q = q.Where("videos.user_id = ?", f.UserID)
	}
	return q
}

// ListVideosPage returns a page of public videos matching f, newest first.
func ListVideosPage(ctx context.Context, db *gorm.DB, f VideoFilter, offset, limit int) ([]domain.VideoSummary, error) {
	out := []domain.VideoSummary{}
	err := f.apply(summaries(ctx, db)).
		Order("videos.upload_date DESC, videos.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// CountVideos returns the number of public videos matching f.
func CountVideos(ctx context.Context, db *gorm.DB, f VideoFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Video{})).
		Count(&total).Error
	return total, err
}

// GetVideo loads a video and its channel. It returns ErrNotFound if missing.
func GetVideo(ctx context.Context, db *gorm.DB, id int64) (*domain.VideoDetail, error) {
	var v domain.Video
	err := db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.VideoDetail{
		Video:   v,
		TagList: domain.SplitTags(v.Tags),
		Channel: domain.ChannelInfo{
			ID:          v.User.ID,
			Name:        v.User.ChannelName,
			Avatar:      v.User.Avatar,
			Verified:    v.User.Verified,
			Subscribers: v.User.SubscribersCount,
		},
	}, nil
}

// VideoExists reports whether a video row with id exists.
func VideoExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// IncrementViews adds one view to the video. It returns ErrNotFound if the
// video does not exist.
func IncrementViews(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment model.
//
// CreateComment and IncrementCommentsCount are meant to run in the same
// transaction so that videos.comments_count tracks the number of comment rows.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// CreateComment inserts a comment on videoID by userID, optionally replying to
// another comment. CreatedAt is set to UTC now.
func CreateComment(ctx context.Context, db *gorm.DB, videoID, userID int64, text string, replyTo *int64) (*domain.Comment, error) {
	c := &domain.Comment{
		VideoID:   videoID,
		UserID:    userID,
		Text:      text,
		ReplyTo:   replyTo,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetComment fetches a comment by id, or ErrNotFound.
func GetComment(ctx context.Context, db *gorm.DB, id int64) (*domain.Comment, error) {
	var c domain.Comment
	err := db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementCommentsCount bumps videos.comments_count by one.
func IncrementCommentsCount(ctx context.Context, db *gorm.DB, videoID int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", videoID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountComments returns the number of comments on a video.
func CountComments(ctx context.Context, db *gorm.DB, videoID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("video_id = ?", videoID).
		Count(&total).Error
	return total, err
}

type commentRow struct {
	ID         int64
	VideoID    int64
	Text       string
	LikesCount int64
	ReplyTo    *int64
	CreatedAt  time.Time
	UserID     int64
	Username   string
	Avatar     string
}

// ListCommentsPage returns a page of a video's comments with their authors,
// newest first.
func ListCommentsPage(ctx context.Context, db *gorm.DB, videoID int64, offset, limit int) ([]domain.CommentView, error) {
	var rows []commentRow
	err := db.WithContext(ctx).
		Table("comments").
		Select("comments.id, comments.video_id, comments.text, comments.likes_count, comments.reply_to, comments.created_at, " +
			"users.id AS user_id, users.username, users.avatar").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.video_id = ?", videoID).
		Order("comments.created_at DESC, comments.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.CommentView, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CommentView{
			ID:         r.ID,
			VideoID:    r.VideoID,
			Text:       r.Text,
			LikesCount: r.LikesCount,
			ReplyTo:    r.ReplyTo,
			CreatedAt:  r.CreatedAt,
			User:       domain.CommentAuthor{ID: r.UserID, Username: r.Username, Avatar: r.Avatar},
		})
	}
	return out, nil
}

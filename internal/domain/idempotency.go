// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the comment produced by a previously processed POST,
// keyed by (user_id, video_id, key). A retry with the same key replays the
// stored comment instead of inserting a second one.
type Idempotency struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_user_video_key,priority:1"`
	VideoID   int64     `gorm:"not null;uniqueIndex:ux_user_video_key,priority:2"`
	Key       string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_user_video_key,priority:3"`
	CommentID int64     `gorm:"not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

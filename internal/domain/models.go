// Package domain defines the persistence models for channels, videos,
// comments, reactions and watch history. These types are mapped with GORM and
// form the core data layer of the video backend.
package domain

import (
	"strings"
	"time"
)

// User is an account that also acts as a channel. Channel display fields
// (name, avatar, verified badge) are projected into video listings.
//
// Fields:
//   - ID: auto-increment primary key.
//   - Username / Email: unique login identifiers.
//   - PasswordHash: bcrypt hash; never serialized.
//   - SubscribersCount / VideosCount / ViewsCount: denormalized channel stats.
type User struct {
	ID               int64     `json:"id"                gorm:"primaryKey;autoIncrement"`
	Username         string    `json:"username"          gorm:"type:varchar(64);not null;uniqueIndex"`
	Email            string    `json:"email"             gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash     string    `json:"-"                 gorm:"type:varchar(255);not null"`
	ChannelName      string    `json:"channel_name"      gorm:"type:varchar(255)"`
	Avatar           string    `json:"avatar"            gorm:"type:varchar(512)"`
	Banner           string    `json:"banner"            gorm:"type:varchar(512)"`
	Description      string    `json:"description"       gorm:"type:text"`
	SubscribersCount int64     `json:"subscribers_count" gorm:"not null;default:0"`
	VideosCount      int64     `json:"videos_count"      gorm:"not null;default:0"`
	ViewsCount       int64     `json:"views_count"       gorm:"not null;default:0"`
	Verified         bool      `json:"verified"          gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Video is an uploaded video and its aggregate engagement counters.
//
// LikesCount and DislikesCount are owned by the engagement ledger: they change
// only together with a row in the likes table. CommentsCount changes only
// together with a comment insert. Tags are stored as comma-separated text.
type Video struct {
	ID            int64     `json:"id"             gorm:"primaryKey;autoIncrement"`
	UserID        int64     `json:"user_id"        gorm:"not null;index"`
	Title         string    `json:"title"          gorm:"type:varchar(255);not null"`
	Description   string    `json:"description"    gorm:"type:text"`
	VideoURL      string    `json:"video_url"      gorm:"type:varchar(512);not null"`
	Thumbnail     string    `json:"thumbnail"      gorm:"type:varchar(512)"`
	Duration      int64     `json:"duration"       gorm:"not null;default:0"`
	ViewsCount    int64     `json:"views_count"    gorm:"not null;default:0;index:idx_videos_popularity,priority:1,sort:desc"`
	LikesCount    int64     `json:"likes_count"    gorm:"not null;default:0;check:likes_count >= 0"`
	DislikesCount int64     `json:"dislikes_count" gorm:"not null;default:0;check:dislikes_count >= 0"`
	CommentsCount int64     `json:"comments_count" gorm:"not null;default:0"`
	Category      string    `json:"category"       gorm:"type:varchar(64);index"`
	Tags          string    `json:"tags"           gorm:"type:text"`
	Privacy       string    `json:"privacy"        gorm:"type:varchar(16);not null;default:'public'"`
	UploadDate    time.Time `json:"upload_date"    gorm:"not null;index:idx_videos_popularity,priority:2,sort:desc"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string { return "videos" }

// Comment is a user comment on a video, optionally replying to another
// comment on the same video.
type Comment struct {
	ID         int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	VideoID    int64     `json:"video_id"    gorm:"not null;index:idx_video_comments,priority:1"`
	UserID     int64     `json:"user_id"     gorm:"not null;index"`
	Text       string    `json:"text"        gorm:"type:text;not null"`
	LikesCount int64     `json:"likes_count" gorm:"not null;default:0"`
	ReplyTo    *int64    `json:"reply_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_video_comments,priority:2"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// WatchHistory records how far a user got into a video. There is at most one
// row per (user_id, video_id); a repeated watch overwrites WatchTime,
// Completed and LastWatched.
type WatchHistory struct {
	ID          int64     `json:"id"           gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"user_id"      gorm:"not null;uniqueIndex:ux_watch_user_video,priority:1;index:idx_watch_recent,priority:1"`
	VideoID     int64     `json:"video_id"     gorm:"not null;uniqueIndex:ux_watch_user_video,priority:2"`
	WatchTime   int64     `json:"watch_time"   gorm:"not null;default:0"`
	Completed   bool      `json:"completed"    gorm:"not null;default:false"`
	LastWatched time.Time `json:"last_watched" gorm:"not null;index:idx_watch_recent,priority:2,sort:desc"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for WatchHistory.
func (WatchHistory) TableName() string { return "watch_history" }

// VideoSummary is the read-only catalog projection used by listings and
// recommendations. It joins channel display fields from the owning user.
type VideoSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Thumbnail     string    `json:"thumbnail"`
	ViewsCount    int64     `json:"views"`
	Duration      int64     `json:"duration"`
	Category      string    `json:"category,omitempty"`
	Tags          string    `json:"-"`
	LikesCount    int64     `json:"likes"`
	UploadDate    time.Time `json:"upload_date"`
	ChannelName   string    `json:"channel"`
	ChannelAvatar string    `json:"channel_avatar"`
	Verified      bool      `json:"verified"`
}

// TagList returns the summary's tags split on commas, trimmed, empties dropped.
func (v VideoSummary) TagList() []string { return SplitTags(v.Tags) }

// SplitTags splits a comma-separated tag string into trimmed, non-empty tags,
// preserving their original order.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ChannelInfo is the channel block embedded in video detail responses.
type ChannelInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Verified    bool   `json:"verified"`
	Subscribers int64  `json:"subscribers"`
}

// VideoDetail is a single video with its tags split and its channel attached.
type VideoDetail struct {
	Video
	TagList []string    `json:"tag_list"`
	Channel ChannelInfo `json:"channel"`
}

// CommentAuthor is the public part of a comment's author.
type CommentAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// CommentView is a comment joined with its author for listings.
type CommentView struct {
	ID         int64         `json:"id"`
	VideoID    int64         `json:"video_id"`
	Text       string        `json:"text"`
	LikesCount int64         `json:"likes"`
	ReplyTo    *int64        `json:"reply_to,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	User       CommentAuthor `json:"user"`
}

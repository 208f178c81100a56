package domain

import "time"

// ReactionKind is the type of a user's reaction to a video.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is one of the supported reaction kinds.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Deltas returns the (likes, dislikes) counter adjustment for adding one
// reaction of kind k. Removing is the negation.
func (k ReactionKind) Deltas() (likes, dislikes int64) {
	switch k {
	case ReactionLike:
		return 1, 0
	case ReactionDislike:
		return 0, 1
	}
	return 0, 0
}

// ToggleAction is the outcome of a reaction toggle.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleChanged ToggleAction = "changed"
	ToggleRemoved ToggleAction = "removed"
)

// Reaction is a user's like or dislike on a video. A user holds at most one
// reaction per video, enforced by the ux_likes_user_video unique index.
//
// Rows are only written by the engagement ledger, in the same transaction
// that adjusts the owning video's counters.
type Reaction struct {
	ID        int64        `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID    int64        `json:"user_id"    gorm:"not null;uniqueIndex:ux_likes_user_video,priority:1"`
	VideoID   int64        `json:"video_id"   gorm:"not null;index;uniqueIndex:ux_likes_user_video,priority:2"`
	Type      ReactionKind `json:"type"       gorm:"type:varchar(16);not null;check:type IN ('like','dislike')"`
	CreatedAt time.Time    `json:"created_at"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Reaction.
func (Reaction) TableName() string { return "likes" }

// VideoCounters is the engagement aggregate stored on a video row.
type VideoCounters struct {
	LikesCount    int64 `json:"likes"`
	DislikesCount int64 `json:"dislikes"`
}

package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// RecentHistory returns the summaries of the n videos userID watched most
// recently, newest first. Ties on last_watched go to the most recently touched
// row, which always holds the highest id (see UpsertWatchProgress).
func RecentHistory(ctx context.Context, db *gorm.DB, userID int64, n int) ([]domain.VideoSummary, error) {
	out := []domain.VideoSummary{}
	err := summaries(ctx, db).
		Joins("JOIN watch_history ON watch_history.video_id = videos.id").
		Where("watch_history.user_id = ?", userID).
		Order("watch_history.last_watched DESC, watch_history.id DESC").
		Limit(n).
		Scan(&out).Error
	return out, err
}

// UpsertWatchProgress records how far userID got into videoID. A second write
// for the same pair replaces the row: the old one is deleted and a new one is
// inserted, so the touched entry gets a fresh id and wins last_watched ties.
func UpsertWatchProgress(ctx context.Context, db *gorm.DB, userID, videoID, watchTime int64, completed bool, at time.Time) (*domain.WatchHistory, error) {
	h := &domain.WatchHistory{
		UserID:      userID,
		VideoID:     videoID,
		WatchTime:   watchTime,
		Completed:   completed,
		LastWatched: at.UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND video_id = ?", userID, videoID).
			Delete(&domain.WatchHistory{}).Error; err != nil {
			return err
		}
		// A concurrent writer may have re-inserted the pair; overwrite it.
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"watch_time", "completed", "last_watched"}),
		}).Create(h).Error
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WatchService records watch progress. It is the writer behind both the HTTP
// progress endpoint and the WebSocket watch_progress event.
type WatchService struct {
	DB *gorm.DB
	// Now is overridable in tests.
	Now func() time.Time
}

// RecordProgress upserts the (userID, videoID) history row with watchTime
// seconds. Later writes overwrite earlier ones.
func (s *WatchService) RecordProgress(ctx context.Context, userID, videoID, watchTime int64, completed bool) (*domain.WatchHistory, error) {
	tr := otel.Tracer("services/WatchService")
	ctx, span := tr.Start(ctx, "RecordProgress",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("video.id", videoID),
			attribute.Int64("watch_time", watchTime),
			attribute.Bool("completed", completed),
		),
	)
	defer span.End()

	if userID <= 0 || videoID <= 0 {
		return nil, ErrInvalidID
	}
	if watchTime < 0 {
		return nil, ErrInvalidProgress
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var out *domain.WatchHistory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repo.VideoExists(ctx, tx, videoID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVideoNotFound
		}
		if ok, err = repo.UserExists(ctx, tx, userID); err != nil {
			return err
		} else if !ok {
			return ErrUserNotFound
		}
		h, err := repo.UpsertWatchProgress(ctx, tx, userID, videoID, watchTime, completed, now())
		if err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, storeErr(ctx, err)
	}
	return out, nil
}

// Package services – VideoService
//
// VideoService serves the public catalog listing and the video detail page.
// Fetching a video's detail counts as a view.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// VideoService provides catalog reads.
type VideoService struct {
	DB *gorm.DB
}

// List returns a page of public videos matching f and the total match count.
func (s *VideoService) List(ctx context.Context, f repo.VideoFilter, page, pageSize int) ([]domain.VideoSummary, int64, error) {
	tr := otel.Tracer("services/VideoService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.category", f.Category),
			attribute.Int64("filter.user_id", f.UserID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	_, size, offset := utils.Page(page, pageSize, 20, 100)

	total, err := repo.CountVideos(ctx, s.DB, f)
	if err != nil {
		return nil, 0, storeErr(ctx, err)
	}
	if total == 0 {
		return []domain.VideoSummary{}, 0, nil
	}
	items, err := repo.ListVideosPage(ctx, s.DB, f, offset, size)
	if err != nil {
		return nil, 0, storeErr(ctx, err)
	}
	return items, total, nil
}

// Get increments the video's view count and returns its detail, so the
// returned views_count includes this view.
func (s *VideoService) Get(ctx context.Context, id int64) (*domain.VideoDetail, error) {
	tr := otel.Tracer("services/VideoService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.Int64("video.id", id)))
	defer span.End()

	if id <= 0 {
		return nil, ErrInvalidID
	}

	var out *domain.VideoDetail
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.IncrementViews(ctx, tx, id); err != nil {
			return err
		}
		d, err := repo.GetVideo(ctx, tx, id)
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, storeErr(ctx, err)
	}
	return out, nil
}

// Package services – RecommendationEngine
//
// Recommend turns a user's recent watch history into a ranked list:
//
//  1. read the 10 most recently watched videos, newest first;
//  2. derive a PreferenceProfile (at most 3 categories and 5 tags);
//  3. query videos matching any profile category OR containing any profile
//     tag, ranked by views, then likes, then id;
//  4. fall back to trending (views, then upload date, then id) when the
//     profile is empty or matched nothing.
//
// Recommend has no side effects and takes no locks.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogRepo defines the read-only store queries required by
// RecommendationEngine.
type CatalogRepo interface {
	// RecentHistory returns the n most recently watched videos, newest first.
	RecentHistory(ctx context.Context, db *gorm.DB, userID int64, n int) ([]domain.VideoSummary, error)

	// QueryByCategoryOrTag returns videos in any of categories or whose tags
	// contain any of tagSubstrings, ordered views DESC, likes DESC, id ASC.
	QueryByCategoryOrTag(ctx context.Context, db *gorm.DB, categories, tagSubstrings []string, limit int) ([]domain.VideoSummary, error)

	// QueryTrending returns videos ordered views DESC, upload_date DESC, id ASC.
	QueryTrending(ctx context.Context, db *gorm.DB, limit int) ([]domain.VideoSummary, error)
}

// Source reports which tier produced a recommendation list.
type Source string

const (
	SourcePersonalized Source = "personalized"
	SourceTrending     Source = "trending"
)

// RecommendationEngine ranks catalog videos for a user.
type RecommendationEngine struct {
	DB   *gorm.DB
	Repo CatalogRepo
}

// NewRecommendationEngine constructs a RecommendationEngine.
func NewRecommendationEngine(db *gorm.DB, r CatalogRepo) *RecommendationEngine {
	return &RecommendationEngine{DB: db, Repo: r}
}

// Recommend returns at most limit videos for userID and the tier that
// produced them. limit <= 0 is ErrInvalidLimit. A user with no history gets
// the trending list.
func (e *RecommendationEngine) Recommend(ctx context.Context, userID int64, limit int) ([]domain.VideoSummary, Source, error) {
	tr := otel.Tracer("services/RecommendationEngine")
	ctx, span := tr.Start(ctx, "Recommend",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if limit <= 0 {
		return nil, "", ErrInvalidLimit
	}
	if userID <= 0 {
		return nil, "", ErrInvalidID
	}

	history, err := e.Repo.RecentHistory(ctx, e.DB, userID, historyWindow)
	if err != nil {
		return nil, "", storeErr(ctx, err)
	}
	pred := BuildProfile(history).predicate()
	span.SetAttributes(
		attribute.Int("history.size", len(history)),
		attribute.String("predicate", pred.kind.String()),
	)

	var candidates []domain.VideoSummary
	switch pred.kind {
	case predicateNone:
	case predicateCategoryOnly:
		candidates, err = e.Repo.QueryByCategoryOrTag(ctx, e.DB, pred.categories, nil, limit)
	case predicateTagOnly:
		candidates, err = e.Repo.QueryByCategoryOrTag(ctx, e.DB, nil, pred.tags, limit)
	case predicateBoth:
		candidates, err = e.Repo.QueryByCategoryOrTag(ctx, e.DB, pred.categories, pred.tags, limit)
	}
	if err != nil {
		return nil, "", storeErr(ctx, err)
	}
	if len(candidates) > 0 {
		return e.served(span, candidates, SourcePersonalized)
	}

	trending, err := e.Repo.QueryTrending(ctx, e.DB, limit)
	if err != nil {
		return nil, "", storeErr(ctx, err)
	}
	return e.served(span, trending, SourceTrending)
}

func (e *RecommendationEngine) served(span trace.Span, out []domain.VideoSummary, src Source) ([]domain.VideoSummary, Source, error) {
	if out == nil {
		out = []domain.VideoSummary{}
	}
	span.SetAttributes(attribute.String("source", string(src)), attribute.Int("results", len(out)))
	recommendationsServed.WithLabelValues(string(src)).Inc()
	return out, src, nil
}

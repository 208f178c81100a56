package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// summaryColumns is the VideoSummary projection joined with the owning channel.
const summaryColumns = "videos.id, videos.title, videos.thumbnail, videos.views_count, " +
	"videos.duration, videos.category, videos.tags, videos.likes_count, videos.upload_date, " +
	"users.channel_name, users.avatar AS channel_avatar, users.verified"

func summaries(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("videos").
		Select(summaryColumns).
		Joins("JOIN users ON users.id = videos.user_id")
}

// escapeLike escapes LIKE metacharacters so s matches literally under
// ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// QueryByCategoryOrTag returns videos whose category is one of categories OR
// whose tags contain any of tagSubstrings, ordered by views_count DESC,
// likes_count DESC, id ASC. Values are always bound as parameters; only fixed
// fragments are concatenated into the query text. When both inputs are empty
// it returns an empty slice without querying.
func QueryByCategoryOrTag(ctx context.Context, db *gorm.DB, categories, tagSubstrings []string, limit int) ([]domain.VideoSummary, error) {
	conds := make([]string, 0, 1+len(tagSubstrings))
	args := make([]any, 0, 1+len(tagSubstrings))
	if len(categories) > 0 {
		conds = append(conds, "videos.category IN ?")
		args = append(args, categories)
	}
	for _, t := range tagSubstrings {
		conds = append(conds, `videos.tags LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(t)+"%")
	}
	out := []domain.VideoSummary{}
	if len(conds) == 0 {
		return out, nil
	}
	err := summaries(ctx, db).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("videos.views_count DESC, videos.likes_count DESC, videos.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// QueryTrending returns the most viewed videos, newest first among equal
// view counts, then by id.
func QueryTrending(ctx context.Context, db *gorm.DB, limit int) ([]domain.VideoSummary, error) {
	out := []domain.VideoSummary{}
	err := summaries(ctx, db).
		Order("videos.views_count DESC, videos.upload_date DESC, videos.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

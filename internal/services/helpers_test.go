package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/repo"
)

// newTestDB opens a migrated in-memory database unique to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newFileDB opens a migrated on-disk database with the production pragmas.
// Concurrency tests need it: shared-cache memory databases report table
// locks instead of waiting on busy_timeout.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mkUser(t *testing.T, db *gorm.DB, username string) domain.User {
	t.Helper()
	u := domain.User{Username: username, Email: username + "@example.com", ChannelName: username}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func mkVideo(t *testing.T, db *gorm.DB, userID int64, v domain.Video) domain.Video {
	t.Helper()
	v.UserID = userID
	if v.VideoURL == "" {
		v.VideoURL = "/videos/x.mp4"
	}
	if v.UploadDate.IsZero() {
		v.UploadDate = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed video %q: %v", v.Title, err)
	}
	return v
}

func watch(t *testing.T, db *gorm.DB, userID, videoID int64, at time.Time) {
	t.Helper()
	if _, err := repo.UpsertWatchProgress(context.Background(), db, userID, videoID, 60, false, at); err != nil {
		t.Fatalf("seed watch: %v", err)
	}
}

func videoIDs(vs []domain.VideoSummary) []int64 {
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

// storeReactions and storeCatalog adapt the repo free functions to the
// service interfaces.
type storeReactions struct{}

func (storeReactions) LockVideo(ctx context.Context, db *gorm.DB, videoID int64) error {
	return repo.LockVideo(ctx, db, videoID)
}
func (storeReactions) UserExists(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	return repo.UserExists(ctx, db, userID)
}
func (storeReactions) GetReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) (*domain.Reaction, error) {
	return repo.GetReaction(ctx, db, userID, videoID)
}
func (storeReactions) UpsertReaction(ctx context.Context, db *gorm.DB, userID, videoID int64, kind domain.ReactionKind) error {
	return repo.UpsertReaction(ctx, db, userID, videoID, kind)
}
func (storeReactions) DeleteReaction(ctx context.Context, db *gorm.DB, userID, videoID int64) error {
	return repo.DeleteReaction(ctx, db, userID, videoID)
}
func (storeReactions) AdjustCounters(ctx context.Context, db *gorm.DB, videoID, dl, dd int64) error {
	return repo.AdjustCounters(ctx, db, videoID, dl, dd)
}
func (storeReactions) GetCounters(ctx context.Context, db *gorm.DB, videoID int64) (domain.VideoCounters, error) {
	return repo.GetCounters(ctx, db, videoID)
}

type storeCatalog struct{}

func (storeCatalog) RecentHistory(ctx context.Context, db *gorm.DB, userID int64, n int) ([]domain.VideoSummary, error) {
	return repo.RecentHistory(ctx, db, userID, n)
}
func (storeCatalog) QueryByCategoryOrTag(ctx context.Context, db *gorm.DB, cats, tags []string, limit int) ([]domain.VideoSummary, error) {
	return repo.QueryByCategoryOrTag(ctx, db, cats, tags, limit)
}
func (storeCatalog) QueryTrending(ctx context.Context, db *gorm.DB, limit int) ([]domain.VideoSummary, error) {
	return repo.QueryTrending(ctx, db, limit)
}

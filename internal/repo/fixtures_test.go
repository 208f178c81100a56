package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// newRepoDB opens a migrated in-memory database unique to the test.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
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
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mkUser(t *testing.T, db *gorm.DB, username string) domain.User {
	t.Helper()
	u := domain.User{
		Username:    username,
		Email:       username + "@example.com",
		ChannelName: strings.ToUpper(username[:1]) + username[1:],
		Avatar:      "/a/" + username + ".jpg",
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// mkVideo inserts a public video owned by userID. Zero upload dates default to
// a fixed instant so ordering in tests is deterministic.
func mkVideo(t *testing.T, db *gorm.DB, userID int64, v domain.Video) domain.Video {
	t.Helper()
	v.UserID = userID
	if v.VideoURL == "" {
		v.VideoURL = "/videos/x.mp4"
	}
	if v.Privacy == "" {
		v.Privacy = "public"
	}
	if v.UploadDate.IsZero() {
		v.UploadDate = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed video %q: %v", v.Title, err)
	}
	return v
}

func ids(vs []domain.VideoSummary) []int64 {
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

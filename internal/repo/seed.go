package repo

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// samplePassword is the login password of every seeded channel.
const samplePassword = "password123"

func sampleUsers(hash string) []domain.User {
	return []domain.User{
		{Username: "ritesh_tech", Email: "ritesh@youtube.com", PasswordHash: hash, ChannelName: "Ritesh Tech Channel",
			Avatar: "/images/ritesh_avatar.jpg", Banner: "/images/ritesh_banner.jpg",
			Description: "Full Stack Developer sharing coding tutorials", SubscribersCount: 125000, VideosCount: 45, ViewsCount: 2500000, Verified: true},
		{Username: "tech_guru", Email: "tech@youtube.com", PasswordHash: hash, ChannelName: "Tech Guru",
			Avatar: "/images/tech_avatar.jpg", Banner: "/images/tech_banner.jpg",
			Description: "Latest technology reviews and tutorials", SubscribersCount: 98000, VideosCount: 23, ViewsCount: 1800000},
		{Username: "coding_academy", Email: "academy@youtube.com", PasswordHash: hash, ChannelName: "Coding Academy",
			Avatar: "/images/academy_avatar.jpg", Banner: "/images/academy_banner.jpg",
			Description: "Learn programming from basics to advanced", SubscribersCount: 250000, VideosCount: 67, ViewsCount: 5200000, Verified: true},
	}
}

// sampleVideos references users by their index in sampleUsers. Like, dislike
// and comment counters start at zero because no reaction or comment rows are
// seeded alongside them.
func sampleVideos(owners []domain.User, now time.Time) []domain.Video {
	return []domain.Video{
		{UserID: owners[0].ID, Title: "Python Full Course - Learn Python in 12 Hours",
			Description: "Complete Python programming tutorial covering all concepts from basics to advanced topics.",
			VideoURL:    "/videos/python_course.mp4", Thumbnail: "/thumbnails/python_course.jpg", Duration: 43200,
			ViewsCount: 285000, Category: "Education", Tags: "python,programming,tutorial,coding", UploadDate: now.Add(-72 * time.Hour)},
		{UserID: owners[0].ID, Title: "React JS Crash Course 2025",
			Description: "Learn React JS from scratch in this comprehensive crash course.",
			VideoURL:    "/videos/react_course.mp4", Thumbnail: "/thumbnails/react_course.jpg", Duration: 25200,
			ViewsCount: 156000, Category: "Education", Tags: "react,javascript,frontend,web development", UploadDate: now.Add(-48 * time.Hour)},
		{UserID: owners[1].ID, Title: "Best Laptops for Programming 2025",
			Description: "Review of the top 10 laptops perfect for programming and development.",
			VideoURL:    "/videos/laptop_review.mp4", Thumbnail: "/thumbnails/laptop_review.jpg", Duration: 1260,
			ViewsCount: 45000, Category: "Technology", Tags: "laptop,programming,review,tech", UploadDate: now.Add(-24 * time.Hour)},
		{UserID: owners[2].ID, Title: "Data Structures and Algorithms",
			Description: "Complete guide to DSA concepts with practical examples.",
			VideoURL:    "/videos/dsa_course.mp4", Thumbnail: "/thumbnails/dsa_course.jpg", Duration: 32400,
			ViewsCount: 198000, Category: "Education", Tags: "data structures,algorithms,coding,interview", UploadDate: now},
	}
}

// SeedSampleData inserts demo channels and videos into an empty database.
// It reports whether anything was inserted; a database that already has users
// is left untouched.
func SeedSampleData(ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(samplePassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := sampleUsers(string(hash))
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		videos := sampleVideos(users, time.Now().UTC())
		return tx.Create(&videos).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-video-backend/internal/domain"
)

func TestCommentCreate_Validation(t *testing.T) {
	s := &CommentService{MaxRunes: 5}
	ctx := context.Background()

	if _, _, err := s.Create(ctx, NewComment{UserID: 1, VideoID: 1, Text: "  \t "}); !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
	if _, _, err := s.Create(ctx, NewComment{UserID: 1, VideoID: 1, Text: "toolong"}); !errors.Is(err, ErrCommentTooLong) {
		t.Fatalf("expected ErrCommentTooLong, got %v", err)
	}
	if _, _, err := s.Create(ctx, NewComment{UserID: 0, VideoID: 1, Text: "hi"}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	bad := int64(0)
	if _, _, err := s.Create(ctx, NewComment{UserID: 1, VideoID: 1, Text: "hi", ReplyTo: &bad}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for reply_to 0, got %v", err)
	}
	if got := normalizeComment("  héllo "); got != "héllo" {
		t.Fatalf("normalizeComment = %q", got)
	}
}

func TestCommentCreate_NormalizesAndCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	alice := mkUser(t, db, "alice")
	v := mkVideo(t, db, owner.ID, domain.Video{Title: "v"})
	s := &CommentService{DB: db, MaxRunes: 100}

	// "e" + combining acute accent composes to a single rune under NFC.
	c, replayed, err := s.Create(ctx, NewComment{UserID: alice.ID, VideoID: v.ID, Text: "  cafe\u0301  "})
	if err != nil || replayed {
		t.Fatalf("Create = %v, replayed=%v", err, replayed)
	}
	if c.Text != "caf\u00e9" {
		t.Fatalf("expected NFC text, got %q", c.Text)
	}

	var got domain.Video
	db.First(&got, v.ID)
	if got.CommentsCount != 1 {
		t.Fatalf("comments_count = %d, want 1", got.CommentsCount)
	}
}

func TestCommentCreate_NotFoundCases(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	v1 := mkVideo(t, db, owner.ID, domain.Video{Title: "v1"})
	v2 := mkVideo(t, db, owner.ID, domain.Video{Title: "v2"})
	s := &CommentService{DB: db}

	if _, _, err := s.Create(ctx, NewComment{UserID: owner.ID, VideoID: v2.ID + 10, Text: "x"}); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if _, _, err := s.Create(ctx, NewComment{UserID: owner.ID + 10, VideoID: v1.ID, Text: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	parent, _, err := s.Create(ctx, NewComment{UserID: owner.ID, VideoID: v1.ID, Text: "parent"})
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	// replying across videos is rejected
	if _, _, err := s.Create(ctx, NewComment{UserID: owner.ID, VideoID: v2.ID, Text: "x", ReplyTo: &parent.ID}); !errors.Is(err, ErrParentCommentNotFound) {
		t.Fatalf("expected ErrParentCommentNotFound, got %v", err)
	}
	missing := parent.ID + 99
	if _, _, err := s.Create(ctx, NewComment{UserID: owner.ID, VideoID: v1.ID, Text: "x", ReplyTo: &missing}); !errors.Is(err, ErrParentCommentNotFound) {
		t.Fatalf("expected ErrParentCommentNotFound, got %v", err)
	}
	reply, _, err := s.Create(ctx, NewComment{UserID: owner.ID, VideoID: v1.ID, Text: "reply", ReplyTo: &parent.ID})
	if err != nil || reply.ReplyTo == nil || *reply.ReplyTo != parent.ID {
		t.Fatalf("reply = %+v, %v", reply, err)
	}

	var got domain.Video
	db.First(&got, v1.ID)
	if got.CommentsCount != 2 {
		t.Fatalf("failed posts must not bump comments_count, got %d", got.CommentsCount)
	}
}

func TestCommentCreate_IdempotencyKeyReplays(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	v := mkVideo(t, db, owner.ID, domain.Video{Title: "v"})
	s := &CommentService{DB: db, IdempotencyTTL: time.Hour}

	in := NewComment{UserID: owner.ID, VideoID: v.ID, Text: "once", IdempotencyKey: "abc-123"}
	first, replayed, err := s.Create(ctx, in)
	if err != nil || replayed {
		t.Fatalf("first = %v, replayed=%v", err, replayed)
	}
	second, replayed, err := s.Create(ctx, in)
	if err != nil || !replayed || second.ID != first.ID {
		t.Fatalf("second = %+v replayed=%v err=%v", second, replayed, err)
	}

	var n int64
	db.Model(&domain.Comment{}).Where("video_id = ?", v.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected a single stored comment, got %d", n)
	}
}

func TestCommentCreate_ExpiredKeyCreatesNewComment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	v := mkVideo(t, db, owner.ID, domain.Video{Title: "v"})
	s := &CommentService{DB: db, IdempotencyTTL: time.Hour}

	in := NewComment{UserID: owner.ID, VideoID: v.ID, Text: "again", IdempotencyKey: "k1"}
	first, _, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	// expired but still waiting for the hourly purge
	db.Model(&domain.Idempotency{}).Where("key = ?", "k1").
		Update("expires_at", time.Now().UTC().Add(-time.Minute))

	second, replayed, err := s.Create(ctx, in)
	if err != nil || replayed || second.ID == first.ID {
		t.Fatalf("second = %+v replayed=%v err=%v", second, replayed, err)
	}
	third, replayed, err := s.Create(ctx, in)
	if err != nil || !replayed || third.ID != second.ID {
		t.Fatalf("third = %+v replayed=%v err=%v", third, replayed, err)
	}
}

func TestCommentListPage_AndStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	v := mkVideo(t, db, owner.ID, domain.Video{Title: "v"})
	s := &CommentService{DB: db}

	items, total, err := s.ListPage(ctx, v.ID, 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty list = %v, %d, %v", items, total, err)
	}
	for _, txt := range []string{"a", "b", "c"} {
		if _, _, err := s.Create(ctx, NewComment{UserID: owner.ID, VideoID: v.ID, Text: txt}); err != nil {
			t.Fatalf("create %s: %v", txt, err)
		}
	}

	items, total, err = s.ListPage(ctx, v.ID, 2, 2)
	if err != nil || total != 3 || len(items) != 1 || items[0].Text != "a" {
		t.Fatalf("page 2 = %+v, %d, %v", items, total, err)
	}
	if items[0].User.Username != "owner" {
		t.Fatalf("author missing: %+v", items[0])
	}

	if _, _, err := s.ListPage(ctx, v.ID+1, 1, 10); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}

	count, maxAt, err := s.Stats(ctx, v.ID)
	if err != nil || count != 3 || maxAt == nil {
		t.Fatalf("Stats = %d, %v, %v", count, maxAt, err)
	}
}

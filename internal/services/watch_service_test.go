package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-video-backend/internal/domain"
)

func TestRecordProgress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner")
	v := mkVideo(t, db, owner.ID, domain.Video{Title: "v"})
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s := &WatchService{DB: db, Now: func() time.Time { return fixed }}

	h, err := s.RecordProgress(ctx, owner.ID, v.ID, 42, false)
	if err != nil || h.WatchTime != 42 || !h.LastWatched.Equal(fixed) {
		t.Fatalf("RecordProgress = %+v, %v", h, err)
	}
	if _, err := s.RecordProgress(ctx, owner.ID, v.ID, 90, true); err != nil {
		t.Fatalf("second RecordProgress: %v", err)
	}
	var rows []domain.WatchHistory
	db.Find(&rows)
	if len(rows) != 1 || rows[0].WatchTime != 90 || !rows[0].Completed {
		t.Fatalf("expected single overwritten row, got %+v", rows)
	}

	if _, err := s.RecordProgress(ctx, owner.ID, v.ID, -1, false); !errors.Is(err, ErrInvalidProgress) {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}
	if _, err := s.RecordProgress(ctx, owner.ID, v.ID+1, 1, false); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if _, err := s.RecordProgress(ctx, owner.ID+1, v.ID, 1, false); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.RecordProgress(ctx, 0, v.ID, 1, false); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// ----- Fake catalog -----

type fakeCatalog struct {
	history    []domain.VideoSummary
	historyErr error

	candidates []domain.VideoSummary
	gotCats    []string
	gotTags    []string
	gotLimit   int
	queried    bool

	trending    []domain.VideoSummary
	trendingErr error
	trendCalled bool
}

func (f *fakeCatalog) RecentHistory(_ context.Context, _ *gorm.DB, _ int64, n int) ([]domain.VideoSummary, error) {
	if n != historyWindow {
		panic("unexpected history window")
	}
	return f.history, f.historyErr
}

func (f *fakeCatalog) QueryByCategoryOrTag(_ context.Context, _ *gorm.DB, cats, tags []string, limit int) ([]domain.VideoSummary, error) {
	f.queried = true
	f.gotCats, f.gotTags, f.gotLimit = cats, tags, limit
	return f.candidates, nil
}

func (f *fakeCatalog) QueryTrending(_ context.Context, _ *gorm.DB, limit int) ([]domain.VideoSummary, error) {
	f.trendCalled = true
	f.gotLimit = limit
	return f.trending, f.trendingErr
}

// ----- Tests -----

func TestRecommend_InvalidInput(t *testing.T) {
	e := NewRecommendationEngine(nil, &fakeCatalog{})
	for _, limit := range []int{0, -3} {
		if _, _, err := e.Recommend(context.Background(), 1, limit); !errors.Is(err, ErrInvalidLimit) {
			t.Fatalf("limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
	if _, _, err := e.Recommend(context.Background(), 0, 5); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRecommend_PassesPredicateByKind(t *testing.T) {
	cand := []domain.VideoSummary{{ID: 9}}

	f := &fakeCatalog{history: []domain.VideoSummary{{Category: "Education"}}, candidates: cand}
	out, src, err := NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 7)
	if err != nil || src != SourcePersonalized || !reflect.DeepEqual(out, cand) {
		t.Fatalf("category-only: out=%v src=%s err=%v", out, src, err)
	}
	if !reflect.DeepEqual(f.gotCats, []string{"Education"}) || f.gotTags != nil || f.gotLimit != 7 {
		t.Fatalf("category-only args: cats=%v tags=%v limit=%d", f.gotCats, f.gotTags, f.gotLimit)
	}

	f = &fakeCatalog{history: []domain.VideoSummary{{Tags: "go"}}, candidates: cand}
	_, _, _ = NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 7)
	if f.gotCats != nil || !reflect.DeepEqual(f.gotTags, []string{"go"}) {
		t.Fatalf("tag-only args: cats=%v tags=%v", f.gotCats, f.gotTags)
	}

	f = &fakeCatalog{history: []domain.VideoSummary{{Category: "Music", Tags: "jazz"}}, candidates: cand}
	_, _, _ = NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 7)
	if !reflect.DeepEqual(f.gotCats, []string{"Music"}) || !reflect.DeepEqual(f.gotTags, []string{"jazz"}) {
		t.Fatalf("both args: cats=%v tags=%v", f.gotCats, f.gotTags)
	}
	if f.trendCalled {
		t.Fatalf("trending must not be queried when candidates exist")
	}
}

func TestRecommend_NoProfileSkipsCandidateQuery(t *testing.T) {
	trend := []domain.VideoSummary{{ID: 1}}
	f := &fakeCatalog{history: []domain.VideoSummary{{Category: "", Tags: ""}}, trending: trend}
	out, src, err := NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 3)
	if err != nil || src != SourceTrending || !reflect.DeepEqual(out, trend) {
		t.Fatalf("out=%v src=%s err=%v", out, src, err)
	}
	if f.queried {
		t.Fatalf("candidate query must be skipped for an empty profile")
	}
}

func TestRecommend_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeCatalog{historyErr: boom}
	if _, _, err := NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 3); !errors.Is(err, boom) {
		t.Fatalf("expected history error, got %v", err)
	}

	f = &fakeCatalog{trendingErr: errors.New("database is locked")}
	_, _, err := NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 3)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from busy trending query, got %v", err)
	}
}

func TestRecommend_EducationHistoryIsDeterministic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ch := mkUser(t, db, "chan")
	viewer := mkUser(t, db, "viewer")

	t0 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	// ten watched Education videos without tags
	for i := 0; i < 10; i++ {
		v := mkVideo(t, db, ch.ID, domain.Video{Title: "watched", Category: "Education", ViewsCount: int64(10 + i)})
		watch(t, db, viewer.ID, v.ID, t0.Add(time.Duration(i)*time.Minute))
	}
	top := mkVideo(t, db, ch.ID, domain.Video{Title: "top", Category: "Education", ViewsCount: 1000, LikesCount: 1})
	tieHi := mkVideo(t, db, ch.ID, domain.Video{Title: "tie-hi", Category: "Education", ViewsCount: 500, LikesCount: 50})
	tieLo := mkVideo(t, db, ch.ID, domain.Video{Title: "tie-lo", Category: "Education", ViewsCount: 500, LikesCount: 5})
	mkVideo(t, db, ch.ID, domain.Video{Title: "music", Category: "Music", ViewsCount: 99999})

	e := NewRecommendationEngine(db, storeCatalog{})
	out, src, err := e.Recommend(ctx, viewer.ID, 4)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if src != SourcePersonalized {
		t.Fatalf("expected personalized, got %s", src)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 results, got %d", len(out))
	}
	want := []int64{top.ID, tieHi.ID, tieLo.ID}
	if !reflect.DeepEqual(videoIDs(out)[:3], want) {
		t.Fatalf("order = %v, want prefix %v", videoIDs(out), want)
	}
	for _, v := range out {
		if v.Category != "Education" {
			t.Fatalf("non-Education video recommended: %+v", v)
		}
	}

	again, _, _ := e.Recommend(ctx, viewer.ID, 4)
	if !reflect.DeepEqual(videoIDs(again), videoIDs(out)) {
		t.Fatalf("repeat call differs: %v vs %v", videoIDs(again), videoIDs(out))
	}
}

func TestRecommend_NoHistoryFallsBackToTrending(t *testing.T) {
	db := newTestDB(t)
	ch := mkUser(t, db, "chan")
	viewer := mkUser(t, db, "viewer")
	a := mkVideo(t, db, ch.ID, domain.Video{Title: "A", ViewsCount: 10})
	b := mkVideo(t, db, ch.ID, domain.Video{Title: "B", ViewsCount: 20})

	out, src, err := NewRecommendationEngine(db, storeCatalog{}).Recommend(context.Background(), viewer.ID, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if src != SourceTrending || !reflect.DeepEqual(videoIDs(out), []int64{b.ID, a.ID}) {
		t.Fatalf("expected trending [B, A], got %v (%s)", videoIDs(out), src)
	}
}

func TestRecommend_CandidateExhaustionFallsBackToTrending(t *testing.T) {
	trend := []domain.VideoSummary{{ID: 2, ViewsCount: 20}, {ID: 1, ViewsCount: 10}}
	f := &fakeCatalog{
		history:    []domain.VideoSummary{{Category: "Cooking", Tags: "pasta"}},
		candidates: []domain.VideoSummary{},
		trending:   trend,
	}
	out, src, err := NewRecommendationEngine(nil, f).Recommend(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !f.queried || !f.trendCalled {
		t.Fatalf("expected candidate query then trending, queried=%v trending=%v", f.queried, f.trendCalled)
	}
	if src != SourceTrending || !reflect.DeepEqual(out, trend) {
		t.Fatalf("expected trending list, got %v (%s)", videoIDs(out), src)
	}
}

func TestRecommend_EmptyCatalogReturnsEmptySlice(t *testing.T) {
	db := newTestDB(t)
	viewer := mkUser(t, db, "viewer")
	out, src, err := NewRecommendationEngine(db, storeCatalog{}).Recommend(context.Background(), viewer.ID, 5)
	if err != nil || out == nil || len(out) != 0 || src != SourceTrending {
		t.Fatalf("expected empty trending slice, got %v (%s) err=%v", out, src, err)
	}
}

package services

import (
	"reflect"
	"testing"

	"github.com/tbourn/go-video-backend/internal/domain"
)

func TestBuildProfile_FirstSeenDistinctTruncated(t *testing.T) {
	history := []domain.VideoSummary{
		{Category: "Education", Tags: "go, backend"},
		{Category: "", Tags: " ,backend,,sql"},
		{Category: "Music", Tags: "jazz"},
		{Category: "Education", Tags: "go,testing,extra"},
		{Category: "Sports", Tags: "football"},
		{Category: "Gaming", Tags: "rpg"},
	}
	p := BuildProfile(history)

	if want := []string{"Education", "Music", "Sports"}; !reflect.DeepEqual(p.Categories, want) {
		t.Fatalf("categories = %v, want %v", p.Categories, want)
	}
	if want := []string{"go", "backend", "sql", "jazz", "testing"}; !reflect.DeepEqual(p.Tags, want) {
		t.Fatalf("tags = %v, want %v", p.Tags, want)
	}
}

func TestBuildProfile_Empty(t *testing.T) {
	p := BuildProfile(nil)
	if len(p.Categories) != 0 || len(p.Tags) != 0 {
		t.Fatalf("expected empty profile, got %+v", p)
	}
	if p.predicate().kind != predicateNone {
		t.Fatalf("empty profile must compile to predicateNone")
	}

	p = BuildProfile([]domain.VideoSummary{{Category: "", Tags: " , "}})
	if p.predicate().kind != predicateNone {
		t.Fatalf("metadata-less history must compile to predicateNone, got %v", p.predicate().kind)
	}
}

func TestPreferenceProfile_PredicateKinds(t *testing.T) {
	cases := []struct {
		p    PreferenceProfile
		want predicateKind
	}{
		{PreferenceProfile{}, predicateNone},
		{PreferenceProfile{Categories: []string{"a"}}, predicateCategoryOnly},
		{PreferenceProfile{Tags: []string{"t"}}, predicateTagOnly},
		{PreferenceProfile{Categories: []string{"a"}, Tags: []string{"t"}}, predicateBoth},
	}
	for _, tc := range cases {
		got := tc.p.predicate()
		if got.kind != tc.want {
			t.Fatalf("predicate(%+v) = %v, want %v", tc.p, got.kind, tc.want)
		}
		switch got.kind {
		case predicateCategoryOnly:
			if len(got.tags) != 0 {
				t.Fatalf("category-only predicate carries tags: %+v", got)
			}
		case predicateTagOnly:
			if len(got.categories) != 0 {
				t.Fatalf("tag-only predicate carries categories: %+v", got)
			}
		}
	}
}

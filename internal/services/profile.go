package services

import "github.com/tbourn/go-video-backend/internal/domain"

const (
	// historyWindow is how many recently watched videos feed a profile.
	historyWindow = 10
	// maxProfileCategories and maxProfileTags bound the profile size.
	maxProfileCategories = 3
	maxProfileTags       = 5
)

// PreferenceProfile is a user's recent interests, derived per request from
// watch history and never stored. Values are distinct and kept in first-seen
// order over a newest-first history scan, so the most recent videos win when
// truncating.
type PreferenceProfile struct {
	Categories []string
	Tags       []string
}

// BuildProfile derives a profile from history ordered newest first. Empty
// categories are skipped; tags are split on commas, trimmed, and empties
// skipped.
func BuildProfile(history []domain.VideoSummary) PreferenceProfile {
	p := PreferenceProfile{Categories: []string{}, Tags: []string{}}
	seenCat := make(map[string]struct{}, maxProfileCategories)
	seenTag := make(map[string]struct{}, maxProfileTags)

	for _, v := range history {
		if v.Category != "" && len(p.Categories) < maxProfileCategories {
			if _, ok := seenCat[v.Category]; !ok {
				seenCat[v.Category] = struct{}{}
				p.Categories = append(p.Categories, v.Category)
			}
		}
		for _, t := range v.TagList() {
			if len(p.Tags) >= maxProfileTags {
				break
			}
			if _, ok := seenTag[t]; ok {
				continue
			}
			seenTag[t] = struct{}{}
			p.Tags = append(p.Tags, t)
		}
	}
	return p
}

// predicateKind says which filters a candidate query uses.
type predicateKind int

const (
	predicateNone predicateKind = iota
	predicateCategoryOnly
	predicateTagOnly
	predicateBoth
)

func (k predicateKind) String() string {
	switch k {
	case predicateCategoryOnly:
		return "category_only"
	case predicateTagOnly:
		return "tag_only"
	case predicateBoth:
		return "category_and_tag"
	}
	return "none"
}

// candidatePredicate is the filter derived from a profile. The kind is
// decided once; the slices are only meaningful for the kinds that use them.
type candidatePredicate struct {
	kind       predicateKind
	categories []string
	tags       []string
}

// predicate turns the profile into a candidate filter.
func (p PreferenceProfile) predicate() candidatePredicate {
	hasCat, hasTag := len(p.Categories) > 0, len(p.Tags) > 0
	switch {
	case hasCat && hasTag:
		return candidatePredicate{kind: predicateBoth, categories: p.Categories, tags: p.Tags}
	case hasCat:
		return candidatePredicate{kind: predicateCategoryOnly, categories: p.Categories}
	case hasTag:
		return candidatePredicate{kind: predicateTagOnly, tags: p.Tags}
	}
	return candidatePredicate{kind: predicateNone}
}

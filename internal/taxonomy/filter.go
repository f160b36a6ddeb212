package taxonomy

import (
	"strings"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

// Relation joins multiple include terms of the same taxonomy.
const (
	RelationAnd = "AND"
	RelationOr  = "OR"
)

// Filter is a parsed include/exclude slug list.
type Filter struct {
	Include []string
	Exclude []string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// ParseFilter splits a comma-separated slug list into include and exclude
// groups. A leading "-" marks exclusion; surrounding whitespace is trimmed,
// empty entries are dropped, order is preserved.
func ParseFilter(raw string) Filter {
	var f Filter
	for _, part := range strings.Split(raw, ",") {
		slug := strings.TrimSpace(part)
		if slug == "" {
			continue
		}
		if strings.HasPrefix(slug, "-") {
			slug = strings.TrimSpace(slug[1:])
			if slug != "" {
				f.Exclude = append(f.Exclude, slug)
			}
			continue
		}
		f.Include = append(f.Include, slug)
	}
	return f
}

// Predicate decides whether an event passes a taxonomy filter set.
type Predicate func(models.Event) bool

// BuildPredicate combines category and tag filters into one event predicate.
// Category includes honor the relation: an explicit AND requires every slug,
// anything else (OR, empty, unrecognized) matches on any. Category excludes
// reject on any match. Tag includes are always OR; tag excludes reject on any
// match. All groups are AND-combined. Slugs the known lookup rejects are
// dropped silently; a nil lookup keeps everything.
func BuildPredicate(categories, categoryRelation, tags string, known func(slug string) bool) Predicate {
	catFilter := keepKnown(ParseFilter(categories), known)
	tagFilter := keepKnown(ParseFilter(tags), known)

	relation := RelationOr
	if strings.EqualFold(categoryRelation, RelationAnd) {
		relation = RelationAnd
	}

	return func(event models.Event) bool {
		if !matchesInclude(event.Categories, catFilter.Include, relation) {
			return false
		}
		if matchesAny(event.Categories, catFilter.Exclude) {
			return false
		}
		if len(tagFilter.Include) > 0 && !matchesAny(event.Tags, tagFilter.Include) {
			return false
		}
		if matchesAny(event.Tags, tagFilter.Exclude) {
			return false
		}
		return true
	}
}

// SlugIndex builds a known-slug lookup from the terms attached to events.
// Listings use it so filter slugs no event carries are dropped instead of
// matching nothing.
func SlugIndex(events []models.Event) func(string) bool {
	known := make(map[string]bool)
	for _, event := range events {
		for _, term := range event.Categories {
			known[term.Slug] = true
		}
		for _, term := range event.Tags {
			known[term.Slug] = true
		}
	}
	return func(slug string) bool { return known[slug] }
}

func keepKnown(f Filter, known func(string) bool) Filter {
	if known == nil {
		return f
	}
	out := Filter{}
	for _, slug := range f.Include {
		if known(slug) {
			out.Include = append(out.Include, slug)
		}
	}
	for _, slug := range f.Exclude {
		if known(slug) {
			out.Exclude = append(out.Exclude, slug)
		}
	}
	return out
}

func matchesInclude(terms models.TermList, slugs []string, relation string) bool {
	if len(slugs) == 0 {
		return true
	}
	if relation == RelationOr {
		return matchesAny(terms, slugs)
	}
	for _, slug := range slugs {
		if !terms.HasSlug(slug) {
			return false
		}
	}
	return true
}

func matchesAny(terms models.TermList, slugs []string) bool {
	for _, slug := range slugs {
		if terms.HasSlug(slug) {
			return true
		}
	}
	return false
}

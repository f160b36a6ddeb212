package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

func eventWith(categories, tags []string) models.Event {
	var event models.Event
	for _, slug := range categories {
		event.Categories = append(event.Categories, models.Term{Slug: slug})
	}
	for _, slug := range tags {
		event.Tags = append(event.Tags, models.Term{Slug: slug})
	}
	return event
}

func TestParseFilter(t *testing.T) {
	f := ParseFilter("a,-b, c ,-d")
	assert.Equal(t, []string{"a", "c"}, f.Include)
	assert.Equal(t, []string{"b", "d"}, f.Exclude)

	f = ParseFilter("")
	assert.True(t, f.IsZero())

	f = ParseFilter(" , -, ,")
	assert.True(t, f.IsZero())
}

func TestBuildPredicateCategoryAnd(t *testing.T) {
	pred := BuildPredicate("workshop,online", RelationAnd, "", nil)

	assert.True(t, pred(eventWith([]string{"workshop", "online", "extra"}, nil)))
	assert.False(t, pred(eventWith([]string{"workshop"}, nil)))
	assert.False(t, pred(eventWith(nil, nil)))
}

func TestBuildPredicateCategoryOr(t *testing.T) {
	pred := BuildPredicate("workshop,online", RelationOr, "", nil)

	assert.True(t, pred(eventWith([]string{"workshop"}, nil)))
	assert.True(t, pred(eventWith([]string{"online"}, nil)))
	assert.False(t, pred(eventWith([]string{"social"}, nil)))
}

func TestBuildPredicateRelationDefaultsToOr(t *testing.T) {
	for _, relation := range []string{"", "in", "bogus"} {
		pred := BuildPredicate("workshop,online", relation, "", nil)

		assert.True(t, pred(eventWith([]string{"workshop"}, nil)), relation)
		assert.True(t, pred(eventWith([]string{"online"}, nil)), relation)
		assert.False(t, pred(eventWith([]string{"social"}, nil)), relation)
	}

	pred := BuildPredicate("workshop,online", "and", "", nil)
	assert.False(t, pred(eventWith([]string{"workshop"}, nil)))
}

func TestBuildPredicateCategoryExclude(t *testing.T) {
	pred := BuildPredicate("-cancelled", RelationAnd, "", nil)

	assert.True(t, pred(eventWith([]string{"workshop"}, nil)))
	assert.False(t, pred(eventWith([]string{"workshop", "cancelled"}, nil)))
}

func TestBuildPredicateTags(t *testing.T) {
	pred := BuildPredicate("", RelationAnd, "beginners,speaker", nil)

	assert.True(t, pred(eventWith(nil, []string{"speaker"})))
	assert.False(t, pred(eventWith(nil, []string{"closed"})))

	pred = BuildPredicate("", RelationAnd, "-closed", nil)
	assert.True(t, pred(eventWith(nil, []string{"speaker"})))
	assert.False(t, pred(eventWith(nil, []string{"speaker", "closed"})))
}

func TestBuildPredicateGroupsCombine(t *testing.T) {
	pred := BuildPredicate("workshop", RelationAnd, "beginners,-closed", nil)

	assert.True(t, pred(eventWith([]string{"workshop"}, []string{"beginners"})))
	assert.False(t, pred(eventWith([]string{"workshop"}, []string{"beginners", "closed"})))
	assert.False(t, pred(eventWith([]string{"social"}, []string{"beginners"})))
}

func TestBuildPredicateDropsUnknownSlugs(t *testing.T) {
	known := func(slug string) bool { return slug == "workshop" }
	pred := BuildPredicate("workshop,typo", RelationAnd, "", known)

	// "typo" is unknown and silently dropped, so workshop alone matches.
	assert.True(t, pred(eventWith([]string{"workshop"}, nil)))
}

func TestSlugIndexWidensWhenNoSlugIsKnown(t *testing.T) {
	events := []models.Event{
		eventWith([]string{"workshop"}, []string{"speaker"}),
		eventWith([]string{"social"}, nil),
	}
	pred := BuildPredicate("nosuchcat", RelationOr, "", SlugIndex(events))

	// Every include slug is unknown, so the filter falls away entirely.
	assert.True(t, pred(events[0]))
	assert.True(t, pred(events[1]))
}

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

func TestWindowActive(t *testing.T) {
	today := date(2025, time.June, 10)
	start := date(2025, time.June, 1)
	end := date(2025, time.June, 30)

	assert.True(t, WindowActive(nil, nil, today))
	assert.True(t, WindowActive(&start, &end, today))
	assert.True(t, WindowActive(&start, nil, today))
	assert.True(t, WindowActive(nil, &end, today))

	// Both ends are inclusive at day granularity.
	assert.True(t, WindowActive(&start, &end, start))
	assert.True(t, WindowActive(&start, &end, end))

	assert.False(t, WindowActive(&start, &end, date(2025, time.May, 31)))
	assert.False(t, WindowActive(&start, &end, date(2025, time.July, 1)))
}

func TestEventActiveOnNonRecurring(t *testing.T) {
	e := NewExpander()

	end := date(2025, time.June, 12)
	event := models.Event{
		StartDate: date(2025, time.June, 10),
		EndDate:   &end,
	}

	assert.True(t, e.EventActiveOn(event, date(2025, time.June, 10)))
	assert.True(t, e.EventActiveOn(event, date(2025, time.June, 12)))
	assert.False(t, e.EventActiveOn(event, date(2025, time.June, 13)))

	// End defaults to the start date.
	single := models.Event{StartDate: date(2025, time.June, 10)}
	assert.True(t, e.EventActiveOn(single, date(2025, time.June, 10)))
	assert.False(t, e.EventActiveOn(single, date(2025, time.June, 11)))

	// Missing start date fails closed.
	assert.False(t, e.EventActiveOn(models.Event{}, date(2025, time.June, 10)))
}

func TestEventActiveOnRecurring(t *testing.T) {
	e := NewExpander()

	event := models.Event{
		StartDate: date(2025, time.June, 2), // Monday
		RecurringPattern: models.RecurrencePattern{
			Type:     models.RecurrenceWeekly,
			Weekdays: []int{1},
		},
		SkippedOccurrences: models.DateList{"2025-06-16"},
	}

	assert.True(t, e.EventActiveOn(event, date(2025, time.June, 9)))
	assert.False(t, e.EventActiveOn(event, date(2025, time.June, 10)))
	assert.False(t, e.EventActiveOn(event, date(2025, time.June, 16)))
}

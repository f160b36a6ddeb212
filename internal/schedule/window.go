package schedule

import (
	"time"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

// WindowActive reports whether a display window covers today. Unset sides are
// open-ended; comparisons are at day granularity, both ends inclusive.
func WindowActive(start, end *time.Time, today time.Time) bool {
	day := dateOnly(today)
	if start != nil && day.Before(dateOnly(*start)) {
		return false
	}
	if end != nil && day.After(dateOnly(*end)) {
		return false
	}
	return true
}

// EventActiveOn reports whether the event has an occurrence covering the given
// day. Events without a start date fail closed. Non-recurring events are
// active from their start date through their end date (the start date alone
// when no end is set). Recurring events are active on expansion dates that
// were not skipped.
func (e *Expander) EventActiveOn(event models.Event, day time.Time) bool {
	if event.StartDate.IsZero() {
		return false
	}
	day = dateOnly(day)

	if !event.RecurringPattern.IsRecurring() {
		start := dateOnly(event.StartDate)
		end := start
		if event.EndDate != nil {
			end = dateOnly(*event.EndDate)
		}
		return !day.Before(start) && !day.After(end)
	}

	if event.SkippedOccurrences.Contains(day.Format("2006-01-02")) {
		return false
	}
	dates := e.Expand(event.RecurringPattern, event.StartDate, day, day)
	return len(dates) == 1
}

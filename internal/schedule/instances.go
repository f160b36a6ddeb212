package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

var weekdayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var ordinalNames = map[int]string{
	-1: "last", 1: "first", 2: "second", 3: "third", 4: "fourth", 5: "fifth",
}

// Instances expands an event into dated occurrences within the window.
// Non-recurring events always yield a single instance at their start date;
// callers window-filter the combined set afterwards. Each instance keeps the
// event's original duration; skipped occurrence dates are dropped.
func (e *Expander) Instances(event models.Event, windowStart, windowEnd time.Time) []models.Occurrence {
	if !event.RecurringPattern.IsRecurring() {
		return []models.Occurrence{{
			Event:             event,
			OccurrenceDate:    dateOnly(event.StartDate),
			OccurrenceEndDate: event.EndDate,
		}}
	}

	var duration time.Duration
	if event.EndDate != nil {
		duration = dateOnly(*event.EndDate).Sub(dateOnly(event.StartDate))
		if duration < 0 {
			duration = 0
		}
	}

	dates := e.Expand(event.RecurringPattern, event.StartDate, windowStart, windowEnd)
	out := make([]models.Occurrence, 0, len(dates))
	for _, date := range dates {
		if event.SkippedOccurrences.Contains(date.Format("2006-01-02")) {
			continue
		}
		inst := models.Occurrence{Event: event, OccurrenceDate: date}
		if event.EndDate != nil {
			end := date.Add(duration)
			inst.OccurrenceEndDate = &end
		}
		inst.RecurrenceLabel = Describe(event.RecurringPattern)
		out = append(out, inst)
	}
	return out
}

// Describe renders a short human label for a pattern, e.g.
// "Every 2 weeks on Monday, Wednesday". Returns "" for non-recurring or
// malformed patterns.
func Describe(p models.RecurrencePattern) string {
	interval := p.Interval
	if interval <= 0 {
		interval = 1
	}

	switch p.Type {
	case models.RecurrenceDaily:
		if interval == 1 {
			return "Every day"
		}
		return fmt.Sprintf("Every %d days", interval)

	case models.RecurrenceWeekly:
		unit := "week"
		if interval > 1 {
			unit = fmt.Sprintf("%d weeks", interval)
		}
		names := make([]string, 0, len(p.Weekdays))
		for _, wd := range p.Weekdays {
			if wd >= 0 && wd <= 6 {
				names = append(names, weekdayNames[wd])
			}
		}
		if len(names) == 0 {
			return fmt.Sprintf("Every %s", unit)
		}
		return fmt.Sprintf("Every %s on %s", unit, strings.Join(names, ", "))

	case models.RecurrenceMonthly:
		unit := "month"
		if interval > 1 {
			unit = fmt.Sprintf("%d months", interval)
		}
		switch p.MonthlyType {
		case models.MonthlyByDate:
			if p.MonthlyDate < 1 || p.MonthlyDate > 31 {
				return ""
			}
			return fmt.Sprintf("Every %s on day %d", unit, p.MonthlyDate)
		case models.MonthlyByWeekday:
			week, weekday, ok := parseMonthlyWeekday(p.MonthlyWeekday)
			if !ok {
				return ""
			}
			return fmt.Sprintf("Every %s on the %s %s", unit, ordinalNames[week], weekdayNames[weekday])
		}
	}
	return ""
}

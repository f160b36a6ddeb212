package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

// Occurrence caps per cadence, five years' worth each. Rules carry the cap as
// COUNT so a pattern can never expand past it regardless of window size.
const (
	maxDailyOccurrences   = 365 * 5
	maxWeeklyOccurrences  = 52 * 5
	maxMonthlyOccurrences = 12 * 5
)

var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Expander turns recurrence patterns into concrete occurrence dates. It is
// stateless; a zero value is ready to use.
type Expander struct{}

func NewExpander() *Expander {
	return &Expander{}
}

// Expand returns the dates on which the pattern fires within the inclusive
// [windowStart, windowEnd] range, anchored at baseDate. Dates come back
// normalized to midnight UTC, sorted ascending, deduplicated.
//
// A pattern of type none yields baseDate when it falls inside the window and
// ignores EndDate. Malformed patterns (unknown type, invalid monthly fields,
// EndDate before baseDate) yield an empty slice rather than an error; callers
// log and move on.
func (e *Expander) Expand(pattern models.RecurrencePattern, baseDate, windowStart, windowEnd time.Time) []time.Time {
	base := dateOnly(baseDate)
	start := dateOnly(windowStart)
	end := dateOnly(windowEnd)

	if end.Before(start) {
		return nil
	}

	if !pattern.IsRecurring() {
		if pattern.Type != models.RecurrenceNone && pattern.Type != "" {
			return nil
		}
		if base.Before(start) || base.After(end) {
			return nil
		}
		return []time.Time{base}
	}

	if until, ok := patternEnd(pattern); ok {
		if until.Before(base) {
			return nil
		}
		if until.Before(end) {
			end = until
		}
	}

	opt, ok := e.ruleOption(pattern, base)
	if !ok {
		return nil
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}

	times := rule.Between(start, end, true)
	out := make([]time.Time, 0, len(times))
	var last time.Time
	for _, t := range times {
		d := dateOnly(t)
		if len(out) > 0 && d.Equal(last) {
			continue
		}
		out = append(out, d)
		last = d
	}
	return out
}

func (e *Expander) ruleOption(pattern models.RecurrencePattern, base time.Time) (rrule.ROption, bool) {
	interval := pattern.Interval
	if interval <= 0 {
		interval = 1
	}

	opt := rrule.ROption{
		Dtstart:  base,
		Interval: interval,
	}

	switch pattern.Type {
	case models.RecurrenceDaily:
		opt.Freq = rrule.DAILY
		opt.Count = maxDailyOccurrences

	case models.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Count = maxWeeklyOccurrences
		for _, wd := range pattern.Weekdays {
			if wd < 0 || wd > 6 {
				return rrule.ROption{}, false
			}
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}

	case models.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Count = maxMonthlyOccurrences
		switch pattern.MonthlyType {
		case models.MonthlyByDate:
			if pattern.MonthlyDate < 1 || pattern.MonthlyDate > 31 {
				return rrule.ROption{}, false
			}
			// Months without the day are skipped, never clamped.
			opt.Bymonthday = []int{pattern.MonthlyDate}
		case models.MonthlyByWeekday:
			week, weekday, ok := parseMonthlyWeekday(pattern.MonthlyWeekday)
			if !ok {
				return rrule.ROption{}, false
			}
			opt.Byweekday = []rrule.Weekday{rruleWeekdays[weekday].Nth(week)}
		default:
			return rrule.ROption{}, false
		}

	default:
		return rrule.ROption{}, false
	}

	return opt, true
}

// parseMonthlyWeekday splits the "week,weekday" wire pair. week is -1 for the
// last occurrence or 1..5; weekday is 0..6 with Sunday as 0.
func parseMonthlyWeekday(raw string) (week, weekday int, ok bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	week, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	weekday, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	if week != -1 && (week < 1 || week > 5) {
		return 0, 0, false
	}
	if weekday < 0 || weekday > 6 {
		return 0, 0, false
	}
	return week, weekday, true
}

func patternEnd(pattern models.RecurrencePattern) (time.Time, bool) {
	if pattern.EndDate == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", pattern.EndDate, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package models

import (
	"database/sql/driver"
	"encoding/json"
)

// RecurrenceType enumerates supported repeat cadences.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// MonthlyType selects how a monthly pattern anchors within the month.
type MonthlyType string

const (
	MonthlyByDate    MonthlyType = "date"
	MonthlyByWeekday MonthlyType = "weekday"
)

// RecurrencePattern describes how an event repeats. Stored as JSONB.
//
// MonthlyWeekday keeps the wire form "week,weekday" where week is -1 (last)
// or 1..5 and weekday is 0..6 with Sunday as 0.
type RecurrencePattern struct {
	Type           RecurrenceType `json:"type"`
	Interval       int            `json:"interval,omitempty"`
	Weekdays       []int          `json:"weekdays,omitempty"`
	MonthlyType    MonthlyType    `json:"monthlyType,omitempty"`
	MonthlyDate    int            `json:"monthlyDate,omitempty"`
	MonthlyWeekday string         `json:"monthlyWeekday,omitempty"`
	EndDate        string         `json:"endDate,omitempty"`
}

// IsRecurring reports whether the pattern repeats at all.
func (p RecurrencePattern) IsRecurring() bool {
	switch p.Type {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

func (p RecurrencePattern) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *RecurrencePattern) Scan(src interface{}) error {
	return scanJSON(src, p)
}

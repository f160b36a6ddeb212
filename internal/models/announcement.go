package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// AnnouncementPriority orders announcements in listings.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "low"
	AnnouncementPriorityNormal AnnouncementPriority = "normal"
	AnnouncementPriorityHigh   AnnouncementPriority = "high"
	AnnouncementPriorityUrgent AnnouncementPriority = "urgent"
)

// Weight maps a priority to its sort weight, highest first.
func (p AnnouncementPriority) Weight() int {
	switch p {
	case AnnouncementPriorityUrgent:
		return 3
	case AnnouncementPriorityHigh:
		return 2
	case AnnouncementPriorityNormal:
		return 1
	default:
		return 0
	}
}

// EventRef points an announcement at a local or external event.
type EventRef struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	SourceID string `json:"source_id,omitempty"`
}

// EventRefList stores linked event references as a JSONB column.
type EventRefList []EventRef

func (l EventRefList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *EventRefList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Announcement is shown while its display window covers the current day.
// Unset window dates leave that side open-ended.
type Announcement struct {
	ID               string               `db:"id" json:"id"`
	Title            string               `db:"title" json:"title"`
	Content          string               `db:"content" json:"content"`
	Priority         AnnouncementPriority `db:"priority" json:"priority"`
	Status           EventStatus          `db:"status" json:"status"`
	DisplayStartDate *time.Time           `db:"display_start_date" json:"display_start_date,omitempty"`
	DisplayEndDate   *time.Time           `db:"display_end_date" json:"display_end_date,omitempty"`
	DisplayStartTime *string              `db:"display_start_time" json:"display_start_time,omitempty"`
	DisplayEndTime   *string              `db:"display_end_time" json:"display_end_time,omitempty"`
	ServiceBodyID    string               `db:"service_body_id" json:"service_body_id"`
	ServiceBodyName  string               `db:"-" json:"service_body_name,omitempty"`
	LinkedEvents     EventRefList         `db:"linked_events" json:"linked_events,omitempty"`
	Categories       TermList             `db:"categories" json:"categories"`
	Tags             TermList             `db:"tags" json:"tags"`
	CreatedAt        time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter narrows announcement listings.
type AnnouncementFilter struct {
	Statuses       []EventStatus
	ServiceBodyIDs []string
	Categories     string
	Tags           string
	Page           int
	PageSize       int
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventStatus tracks an event through moderation.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusPublish  EventStatus = "publish"
	EventStatusRejected EventStatus = "rejected"
)

// SourceLocal marks events owned by this instance rather than a federated source.
const SourceLocal = "local"

// Event represents a community event row. External events share the shape but
// are never persisted locally; SourceID distinguishes them.
type Event struct {
	ID                 string            `db:"id" json:"id"`
	Title              string            `db:"title" json:"title"`
	Content            string            `db:"content" json:"content"`
	Slug               string            `db:"slug" json:"slug"`
	Status             EventStatus       `db:"status" json:"status"`
	EventType          string            `db:"event_type" json:"event_type"`
	FeaturedImageURL   *string           `db:"featured_image_url" json:"featured_image_url,omitempty"`
	StartDate          time.Time         `db:"start_date" json:"start_date"`
	EndDate            *time.Time        `db:"end_date" json:"end_date,omitempty"`
	StartTime          *string           `db:"start_time" json:"start_time,omitempty"`
	EndTime            *string           `db:"end_time" json:"end_time,omitempty"`
	Timezone           string            `db:"timezone" json:"timezone"`
	RecurringPattern   RecurrencePattern `db:"recurring_pattern" json:"recurring_pattern"`
	SkippedOccurrences DateList          `db:"skipped_occurrences" json:"skipped_occurrences,omitempty"`
	ServiceBodyID      string            `db:"service_body_id" json:"service_body_id"`
	ServiceBodyName    string            `db:"-" json:"service_body_name,omitempty"`
	ContactName        *string           `db:"contact_name" json:"contact_name,omitempty"`
	ContactEmail       *string           `db:"contact_email" json:"contact_email,omitempty"`
	LocationName       *string           `db:"location_name" json:"location_name,omitempty"`
	LocationAddress    *string           `db:"location_address" json:"location_address,omitempty"`
	LocationDetails    *string           `db:"location_details" json:"location_details,omitempty"`
	Categories         TermList          `db:"categories" json:"categories"`
	Tags               TermList          `db:"tags" json:"tags"`
	SourceID           string            `db:"-" json:"source_id"`
	RecurrenceLabel    string            `db:"-" json:"recurrence_label,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// Occurrence is a single dated instance of an event. Recurring events expand
// into one Occurrence per matching date; the instance keeps the event's
// original duration and clock times.
type Occurrence struct {
	Event
	OccurrenceDate    time.Time  `json:"occurrence_date"`
	OccurrenceEndDate *time.Time `json:"occurrence_end_date,omitempty"`
}

// Term is a taxonomy node attached to events in document order.
type Term struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TermList stores ordered terms as a JSONB column.
type TermList []Term

func (t TermList) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

func (t *TermList) Scan(src interface{}) error {
	return scanJSON(src, t)
}

// Slugs returns the term slugs preserving order.
func (t TermList) Slugs() []string {
	slugs := make([]string, 0, len(t))
	for _, term := range t {
		slugs = append(slugs, term.Slug)
	}
	return slugs
}

// HasSlug reports whether any term carries the slug.
func (t TermList) HasSlug(slug string) bool {
	for _, term := range t {
		if term.Slug == slug {
			return true
		}
	}
	return false
}

// DateList stores a set of YYYY-MM-DD dates as a JSONB column.
type DateList []string

func (d DateList) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *DateList) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Contains reports whether the date (YYYY-MM-DD) is present.
func (d DateList) Contains(date string) bool {
	for _, v := range d {
		if v == date {
			return true
		}
	}
	return false
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported scan source %T", src)
	}
}

// EventFilter narrows event listings. Taxonomy strings keep the raw
// comma-separated request form; parsing happens in the taxonomy package.
type EventFilter struct {
	Statuses         []EventStatus
	EventType        string
	ServiceBodyIDs   []string
	Categories       string
	CategoryRelation string
	Tags             string
	StartDate        *time.Time
	EndDate          *time.Time
	Archive          bool
	SourceIDs        []string
	Search           string
	OrderBy          string
	Order            string
	Page             int
	PageSize         int
}

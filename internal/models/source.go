package models

import "time"

// ServiceBodyRecord is the subset of a BMLT service body this service cares
// about. IDs stay strings; root servers disagree on numeric formats.
type ServiceBodyRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExternalSource is a remote events instance whose published events are merged
// into local listings.
type ExternalSource struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	URL         string    `db:"url" json:"url"`
	Enabled     bool      `db:"enabled" json:"enabled"`
	EventType   string    `db:"event_type" json:"event_type"`
	ServiceBody string    `db:"service_body" json:"service_body"`
	Categories  string    `db:"categories" json:"categories"`
	Tags        string    `db:"tags" json:"tags"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

const eventColumns = `id, title, content, slug, status, event_type, featured_image_url,
start_date, end_date, start_time, end_time, timezone, recurring_pattern, skipped_occurrences,
service_body_id, contact_name, contact_email, location_name, location_address, location_details,
categories, tags, created_at, updated_at`

// EventRepository persists events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching the SQL-expressible filters: status, type,
// service body and title search. Date-range, archive and taxonomy filters run
// in the service after recurrence expansion, so no paging happens here.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(statuses))
	}
	if filter.EventType != "" {
		where = append(where, fmt.Sprintf("event_type = $%d", len(args)+1))
		args = append(args, filter.EventType)
	}
	if len(filter.ServiceBodyIDs) > 0 {
		where = append(where, fmt.Sprintf("service_body_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.ServiceBodyIDs))
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	query := fmt.Sprintf("SELECT %s FROM events WHERE %s ORDER BY start_date ASC, start_time ASC NULLS FIRST",
		eventColumns, strings.Join(where, " AND "))

	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for i := range events {
		events[i].SourceID = models.SourceLocal
	}
	return events, nil
}

// GetByID fetches one event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	event.SourceID = models.SourceLocal
	return &event, nil
}

// GetBySlug fetches one event by its slug.
func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE slug = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug %s: %w", slug, err)
	}
	event.SourceID = models.SourceLocal
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	query := `INSERT INTO events (id, title, content, slug, status, event_type, featured_image_url,
start_date, end_date, start_time, end_time, timezone, recurring_pattern, skipped_occurrences,
service_body_id, contact_name, contact_email, location_name, location_address, location_details,
categories, tags, created_at, updated_at)
VALUES (:id, :title, :content, :slug, :status, :event_type, :featured_image_url,
:start_date, :end_date, :start_time, :end_time, :timezone, :recurring_pattern, :skipped_occurrences,
:service_body_id, :contact_name, :contact_email, :location_name, :location_address, :location_details,
:categories, :tags, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE events SET title = :title, content = :content, slug = :slug, status = :status,
event_type = :event_type, featured_image_url = :featured_image_url, start_date = :start_date,
end_date = :end_date, start_time = :start_time, end_time = :end_time, timezone = :timezone,
recurring_pattern = :recurring_pattern, skipped_occurrences = :skipped_occurrences,
service_body_id = :service_body_id, contact_name = :contact_name, contact_email = :contact_email,
location_name = :location_name, location_address = :location_address, location_details = :location_details,
categories = :categories, tags = :tags, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// UpdateStatus moves an event through moderation.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status models.EventStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE events SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// SlugExists reports whether a slug is already taken by another event.
func (r *EventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM events WHERE slug = $1 AND id <> $2", slug, excludeID)
	if err != nil {
		return false, fmt.Errorf("check slug %s: %w", slug, err)
	}
	return count > 0, nil
}

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

const announcementColumns = `id, title, content, priority, status,
display_start_date, display_end_date, display_start_time, display_end_time,
service_body_id, linked_events, categories, tags, created_at, updated_at`

// AnnouncementRepository persists announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs an announcement repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements matching status and service body filters.
// Window matching and taxonomy filtering happen in the service.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
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
	if len(filter.ServiceBodyIDs) > 0 {
		where = append(where, fmt.Sprintf("service_body_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.ServiceBodyIDs))
	}

	query := fmt.Sprintf("SELECT %s FROM announcements WHERE %s ORDER BY created_at DESC",
		announcementColumns, strings.Join(where, " AND "))

	announcements := []models.Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// GetByID fetches one announcement.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements WHERE id = $1", announcementColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get announcement %s: %w", id, err)
	}
	return &announcement, nil
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now

	query := `INSERT INTO announcements (id, title, content, priority, status,
display_start_date, display_end_date, display_start_time, display_end_time,
service_body_id, linked_events, categories, tags, created_at, updated_at)
VALUES (:id, :title, :content, :priority, :status,
:display_start_date, :display_end_date, :display_start_time, :display_end_time,
:service_body_id, :linked_events, :categories, :tags, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update modifies an announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	query := `UPDATE announcements SET title = :title, content = :content, priority = :priority,
status = :status, display_start_date = :display_start_date, display_end_date = :display_end_date,
display_start_time = :display_start_time, display_end_time = :display_end_time,
service_body_id = :service_body_id, linked_events = :linked_events,
categories = :categories, tags = :tags, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, announcement)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

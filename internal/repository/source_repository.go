package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

const sourceColumns = `id, name, url, enabled, event_type, service_body, categories, tags, created_at, updated_at`

// SourceRepository persists external event sources.
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository constructs a source repository.
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// List returns sources, optionally only the enabled ones.
func (r *SourceRepository) List(ctx context.Context, onlyEnabled bool) ([]models.ExternalSource, error) {
	query := fmt.Sprintf("SELECT %s FROM external_sources", sourceColumns)
	if onlyEnabled {
		query += " WHERE enabled = true"
	}
	query += " ORDER BY name ASC"

	sources := []models.ExternalSource{}
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// GetByID fetches one source.
func (r *SourceRepository) GetByID(ctx context.Context, id string) (*models.ExternalSource, error) {
	query := fmt.Sprintf("SELECT %s FROM external_sources WHERE id = $1", sourceColumns)
	var source models.ExternalSource
	if err := r.db.GetContext(ctx, &source, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get source %s: %w", id, err)
	}
	return &source, nil
}

// Create inserts a source.
func (r *SourceRepository) Create(ctx context.Context, source *models.ExternalSource) error {
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	query := `INSERT INTO external_sources (id, name, url, enabled, event_type, service_body, categories, tags, created_at, updated_at)
VALUES (:id, :name, :url, :enabled, :event_type, :service_body, :categories, :tags, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, source); err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	return nil
}

// Update modifies a source.
func (r *SourceRepository) Update(ctx context.Context, source *models.ExternalSource) error {
	source.UpdatedAt = time.Now().UTC()
	query := `UPDATE external_sources SET name = :name, url = :url, enabled = :enabled,
event_type = :event_type, service_body = :service_body, categories = :categories, tags = :tags,
updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, source)
	if err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// Delete removes a source.
func (r *SourceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM external_sources WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

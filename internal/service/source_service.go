package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

type sourceRepository interface {
	List(ctx context.Context, onlyEnabled bool) ([]models.ExternalSource, error)
	GetByID(ctx context.Context, id string) (*models.ExternalSource, error)
	Create(ctx context.Context, source *models.ExternalSource) error
	Update(ctx context.Context, source *models.ExternalSource) error
	Delete(ctx context.Context, id string) error
}

// SourceService manages the external sources whose events federate into
// local listings.
type SourceService struct {
	repo      sourceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSourceService constructs the service.
func NewSourceService(repo sourceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SourceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// SaveSourceRequest is the create/update payload.
type SaveSourceRequest struct {
	Name        string `json:"name" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Enabled     bool   `json:"enabled"`
	EventType   string `json:"event_type"`
	ServiceBody string `json:"service_body"`
	Categories  string `json:"categories"`
	Tags        string `json:"tags"`
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]models.ExternalSource, error) {
	sources, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sources")
	}
	return sources, nil
}

// Get returns one source.
func (s *SourceService) Get(ctx context.Context, id string) (*models.ExternalSource, error) {
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "source not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get source")
	}
	return source, nil
}

// Create registers a new source.
func (s *SourceService) Create(ctx context.Context, req SaveSourceRequest) (*models.ExternalSource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	source := s.fromRequest(req)
	if err := s.repo.Create(ctx, source); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create source")
	}
	s.invalidate(ctx)
	s.logger.Info("source created", zap.String("source_id", source.ID), zap.String("url", source.URL))
	return source, nil
}

// Update modifies a source.
func (s *SourceService) Update(ctx context.Context, id string, req SaveSourceRequest) (*models.ExternalSource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := s.fromRequest(req)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update source")
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a source.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			return appErrors.Clone(appErrors.ErrNotFound, "source not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete source")
	}
	s.invalidate(ctx)
	return nil
}

func (s *SourceService) fromRequest(req SaveSourceRequest) *models.ExternalSource {
	return &models.ExternalSource{
		Name:        req.Name,
		URL:         req.URL,
		Enabled:     req.Enabled,
		EventType:   req.EventType,
		ServiceBody: req.ServiceBody,
		Categories:  req.Categories,
		Tags:        req.Tags,
	}
}

func (s *SourceService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, "events:*")
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/schedule"
	"github.com/bmlt-enabled/mayo-events-api/internal/taxonomy"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

type linkedEventLoader interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

// AnnouncementService handles announcement workflows and active-window
// matching for the public feed.
type AnnouncementService struct {
	repo      announcementRepository
	events    linkedEventLoader
	resolver  serviceBodyDirectory
	expander  *schedule.Expander
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, events linkedEventLoader, resolver serviceBodyDirectory, expander *schedule.Expander, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if expander == nil {
		expander = schedule.NewExpander()
	}
	svc := &AnnouncementService{
		repo:      repo,
		events:    events,
		resolver:  resolver,
		expander:  expander,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
		switch models.EventStatus(fl.Field().String()) {
		case models.EventStatusPending, models.EventStatusPublish, models.EventStatusRejected:
			return true
		default:
			return false
		}
	})
	svc.validator.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		switch models.AnnouncementPriority(strings.ToLower(fl.Field().String())) {
		case models.AnnouncementPriorityLow, models.AnnouncementPriorityNormal,
			models.AnnouncementPriorityHigh, models.AnnouncementPriorityUrgent:
			return true
		default:
			return false
		}
	})
	return svc
}

// AnnouncementListRequest describes filters for the public announcement feed.
type AnnouncementListRequest struct {
	ServiceBody string
	Categories  string
	Tags        string
}

// ActiveAnnouncement is an announcement decorated for the public feed.
type ActiveAnnouncement struct {
	models.Announcement
	LinkedEventDetails []LinkedEventDetail `json:"linked_event_details,omitempty"`
}

// LinkedEventDetail is a linked local event plus whether it has an occurrence
// covering today.
type LinkedEventDetail struct {
	models.Event
	IsActive bool `json:"is_active"`
}

// SaveAnnouncementRequest is the create/update payload.
type SaveAnnouncementRequest struct {
	Title            string              `json:"title" validate:"required"`
	Content          string              `json:"content" validate:"required"`
	Priority         string              `json:"priority" validate:"required,priority"`
	Status           string              `json:"status" validate:"omitempty,eventstatus"`
	DisplayStartDate string              `json:"display_start_date" validate:"omitempty,datetime=2006-01-02"`
	DisplayEndDate   string              `json:"display_end_date" validate:"omitempty,datetime=2006-01-02"`
	DisplayStartTime *string             `json:"display_start_time"`
	DisplayEndTime   *string             `json:"display_end_time"`
	ServiceBodyID    string              `json:"service_body_id"`
	LinkedEvents     models.EventRefList `json:"linked_events"`
	Categories       models.TermList     `json:"categories"`
	Tags             models.TermList     `json:"tags"`
}

// ListActive returns published announcements whose display window covers
// today, sorted by priority weight then recency, with linked local events
// attached. Broken links are dropped silently.
func (s *AnnouncementService) ListActive(ctx context.Context, req AnnouncementListRequest) ([]ActiveAnnouncement, error) {
	rows, err := s.repo.List(ctx, models.AnnouncementFilter{
		Statuses:       []models.EventStatus{models.EventStatusPublish},
		ServiceBodyIDs: splitList(req.ServiceBody),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}

	catFilter := taxonomy.ParseFilter(req.Categories)
	tagFilter := taxonomy.ParseFilter(req.Tags)
	today := s.now().UTC()

	active := make([]ActiveAnnouncement, 0, len(rows))
	for _, announcement := range rows {
		if !schedule.WindowActive(announcement.DisplayStartDate, announcement.DisplayEndDate, today) {
			continue
		}
		if !matchesTerms(announcement.Categories, catFilter) || !matchesTerms(announcement.Tags, tagFilter) {
			continue
		}
		announcement.ServiceBodyName = s.resolver.ResolveName(ctx, announcement.ServiceBodyID, models.SourceLocal)
		active = append(active, ActiveAnnouncement{
			Announcement:       announcement,
			LinkedEventDetails: s.loadLinkedEvents(ctx, announcement.LinkedEvents, today),
		})
	}

	sort.SliceStable(active, func(i, j int) bool {
		wi, wj := active[i].Priority.Weight(), active[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get announcement")
	}
	return announcement, nil
}

// Create registers a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, req SaveAnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.buildAnnouncement(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return announcement, nil
}

// Update modifies an existing announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req SaveAnnouncementRequest) (*models.Announcement, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.buildAnnouncement(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return updated, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}

func (s *AnnouncementService) buildAnnouncement(req SaveAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	var startDate, endDate *time.Time
	if req.DisplayStartDate != "" {
		parsed, _ := time.ParseInLocation("2006-01-02", req.DisplayStartDate, time.UTC)
		startDate = &parsed
	}
	if req.DisplayEndDate != "" {
		parsed, _ := time.ParseInLocation("2006-01-02", req.DisplayEndDate, time.UTC)
		if startDate != nil && parsed.Before(*startDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "display_end_date must not precede display_start_date")
		}
		endDate = &parsed
	}

	status := models.EventStatus(req.Status)
	if req.Status == "" {
		status = models.EventStatusPublish
	}

	return &models.Announcement{
		Title:            req.Title,
		Content:          req.Content,
		Priority:         models.AnnouncementPriority(strings.ToLower(req.Priority)),
		Status:           status,
		DisplayStartDate: startDate,
		DisplayEndDate:   endDate,
		DisplayStartTime: req.DisplayStartTime,
		DisplayEndTime:   req.DisplayEndTime,
		ServiceBodyID:    req.ServiceBodyID,
		LinkedEvents:     req.LinkedEvents,
		Categories:       req.Categories,
		Tags:             req.Tags,
	}, nil
}

func (s *AnnouncementService) loadLinkedEvents(ctx context.Context, refs models.EventRefList, today time.Time) []LinkedEventDetail {
	var details []LinkedEventDetail
	for _, ref := range refs {
		if ref.Type != models.SourceLocal || ref.ID == "" {
			continue
		}
		event, err := s.events.GetByID(ctx, ref.ID)
		if err != nil {
			s.logger.Warn("linked event missing",
				zap.String("event_id", ref.ID), zap.Error(err))
			continue
		}
		details = append(details, LinkedEventDetail{
			Event:    *event,
			IsActive: s.expander.EventActiveOn(*event, today),
		})
	}
	return details
}

func matchesTerms(terms models.TermList, filter taxonomy.Filter) bool {
	if len(filter.Include) > 0 {
		found := false
		for _, slug := range filter.Include {
			if terms.HasSlug(slug) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, slug := range filter.Exclude {
		if terms.HasSlug(slug) {
			return false
		}
	}
	return true
}

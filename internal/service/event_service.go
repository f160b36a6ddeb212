package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/federation"
	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/schedule"
	"github.com/bmlt-enabled/mayo-events-api/internal/taxonomy"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type sourceLister interface {
	List(ctx context.Context, onlyEnabled bool) ([]models.ExternalSource, error)
}

type remoteEventsFetcher interface {
	FetchEvents(ctx context.Context, source models.ExternalSource) (federation.RemoteEvents, error)
}

type serviceBodyDirectory interface {
	ResolveName(ctx context.Context, id, sourceID string) string
	GetAll(ctx context.Context, sourceID string) []models.ServiceBodyRecord
	UpdateExternalServiceBodies(sourceID string, records []models.ServiceBodyRecord)
}

// EventService composes event listings from local rows and federated sources,
// and owns the submission/moderation workflow.
type EventService struct {
	repo       eventRepository
	sources    sourceLister
	federation remoteEventsFetcher
	resolver   serviceBodyDirectory
	expander   *schedule.Expander
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        config.EventsConfig
}

// NewEventService constructs the service.
func NewEventService(
	repo eventRepository,
	sources sourceLister,
	fetcher remoteEventsFetcher,
	resolver serviceBodyDirectory,
	expander *schedule.Expander,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.EventsConfig,
) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if expander == nil {
		expander = schedule.NewExpander()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.ExpansionHorizon <= 0 {
		cfg.ExpansionHorizon = 5 * 365 * 24 * time.Hour
	}
	svc := &EventService{
		repo:       repo,
		sources:    sources,
		federation: fetcher,
		resolver:   resolver,
		expander:   expander,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
	svc.validator.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
		switch models.EventStatus(fl.Field().String()) {
		case models.EventStatusPending, models.EventStatusPublish, models.EventStatusRejected:
			return true
		default:
			return false
		}
	})
	return svc
}

// SubmitEventRequest is the public submission payload.
type SubmitEventRequest struct {
	Title            string                   `json:"title" validate:"required"`
	Content          string                   `json:"content"`
	EventType        string                   `json:"event_type" validate:"required"`
	StartDate        string                   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string                   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime        *string                  `json:"start_time"`
	EndTime          *string                  `json:"end_time"`
	Timezone         string                   `json:"timezone"`
	RecurringPattern models.RecurrencePattern `json:"recurring_pattern"`
	ServiceBodyID    string                   `json:"service_body_id" validate:"required"`
	ContactName      *string                  `json:"contact_name"`
	ContactEmail     *string                  `json:"contact_email" validate:"omitempty,email"`
	LocationName     *string                  `json:"location_name"`
	LocationAddress  *string                  `json:"location_address"`
	LocationDetails  *string                  `json:"location_details"`
	Categories       models.TermList          `json:"categories"`
	Tags             models.TermList          `json:"tags"`
}

// UpdateEventRequest is the admin edit payload; same shape plus status and
// skipped occurrence dates.
type UpdateEventRequest struct {
	SubmitEventRequest
	Status             string          `json:"status" validate:"required,eventstatus"`
	SkippedOccurrences models.DateList `json:"skipped_occurrences"`
}

// EventListRequest mirrors the listing query string.
type EventListRequest struct {
	Page             int
	PerPage          int
	Status           string
	EventType        string
	ServiceBody      string
	Categories       string
	CategoryRelation string
	Tags             string
	StartDate        string
	EndDate          string
	Archive          bool
	Timezone         string
	SourceIDs        []string
	OrderBy          string
	Order            string
	Search           string
}

// SourceInfo summarizes a source included in a listing.
type SourceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// EventListResult is the composed listing payload. ServiceBodies carries the
// local resolver records so peer instances can federate against this one.
type EventListResult struct {
	Events        []models.Occurrence        `json:"events"`
	Sources       []SourceInfo               `json:"sources"`
	ServiceBodies []models.ServiceBodyRecord `json:"service_bodies"`
	Pagination    *models.Pagination         `json:"pagination"`
}

// List queries local events, expands recurrences, merges enabled external
// sources, then filters, sorts and paginates the combined set.
func (s *EventService) List(ctx context.Context, req EventListRequest) (*EventListResult, error) {
	statuses, err := parseStatuses(req.Status)
	if err != nil {
		return nil, err
	}
	startDate, err := parseListDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseListDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	key := listCacheKey(req)
	var cached EventListResult
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	today := s.today(req.Timezone)

	windowStart := today.Add(-s.cfg.ExpansionHorizon)
	windowEnd := today.Add(s.cfg.ExpansionHorizon)
	if startDate != nil {
		windowStart = *startDate
	}
	if endDate != nil {
		windowEnd = *endDate
	}

	includeLocal, external, sourceInfos, err := s.selectSources(ctx, req.SourceIDs)
	if err != nil {
		return nil, err
	}

	var candidates []models.Event
	if includeLocal {
		local, err := s.repo.List(ctx, models.EventFilter{
			Statuses:       statuses,
			EventType:      req.EventType,
			ServiceBodyIDs: splitList(req.ServiceBody),
			Search:         req.Search,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
		}
		candidates = append(candidates, local...)
	}

	for _, source := range external {
		remote, err := s.federation.FetchEvents(ctx, source)
		s.metrics.RecordSourceFetch(source.ID, err == nil)
		if err != nil {
			s.logger.Warn("external source fetch failed",
				zap.String("source_id", source.ID), zap.Error(err))
			continue
		}
		s.resolver.UpdateExternalServiceBodies(source.ID, remote.ServiceBodies)
		candidates = append(candidates, remote.Events...)
	}

	// Filter slugs are checked against the terms actually in play so a typo
	// or foreign slug widens the listing instead of emptying it.
	pred := taxonomy.BuildPredicate(req.Categories, req.CategoryRelation, req.Tags, taxonomy.SlugIndex(candidates))

	occurrences := []models.Occurrence{}
	for _, event := range candidates {
		if !pred(event) {
			continue
		}
		occurrences = append(occurrences, s.expander.Instances(event, windowStart, windowEnd)...)
	}

	occurrences = filterByWindow(occurrences, startDate, endDate, req.Archive, today)
	sortOccurrences(occurrences, req.OrderBy, req.Order)

	page, size := s.clampPage(req.Page, req.PerPage)
	total := len(occurrences)
	pageSlice := paginate(occurrences, page, size)

	for i := range pageSlice {
		pageSlice[i].ServiceBodyName = s.resolver.ResolveName(ctx, pageSlice[i].ServiceBodyID, pageSlice[i].SourceID)
	}

	result := &EventListResult{
		Events:        pageSlice,
		Sources:       sourceInfos,
		ServiceBodies: s.resolver.GetAll(ctx, models.SourceLocal),
		Pagination:    &models.Pagination{Page: page, PageSize: size, TotalCount: total},
	}
	_ = s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
	return result, nil
}

// Get returns one local event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOrInternal(err, "event not found", "failed to get event")
	}
	s.decorate(ctx, event)
	return event, nil
}

// GetBySlug returns one local event by slug.
func (s *EventService) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.notFoundOrInternal(err, "event not found", "failed to get event")
	}
	s.decorate(ctx, event)
	return event, nil
}

// Submit accepts a public submission; it always lands pending.
func (s *EventService) Submit(ctx context.Context, req SubmitEventRequest) (*models.Event, error) {
	event, err := s.buildEvent(ctx, req, "")
	if err != nil {
		return nil, err
	}
	event.Status = models.EventStatusPending

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidateListings(ctx)
	s.logger.Info("event submitted", zap.String("event_id", event.ID), zap.String("title", event.Title))
	return event, nil
}

// Update replaces an event's editable fields.
func (s *EventService) Update(ctx context.Context, id string, req UpdateEventRequest) (*models.Event, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOrInternal(err, "event not found", "failed to load event")
	}

	event, err := s.buildEvent(ctx, req.SubmitEventRequest, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	event.ID = existing.ID
	event.CreatedAt = existing.CreatedAt
	event.Status = models.EventStatus(req.Status)
	event.SkippedOccurrences = req.SkippedOccurrences

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, s.notFoundOrInternal(err, "event not found", "failed to update event")
	}
	s.invalidateListings(ctx)
	return event, nil
}

// UpdateStatus moves an event through moderation.
func (s *EventService) UpdateStatus(ctx context.Context, id string, status string) (*models.Event, error) {
	next := models.EventStatus(status)
	switch next {
	case models.EventStatusPending, models.EventStatusPublish, models.EventStatusRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, fmt.Sprintf("unknown status %q", status))
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, s.notFoundOrInternal(err, "event not found", "failed to update event status")
	}
	s.invalidateListings(ctx)
	s.logger.Info("event status changed", zap.String("event_id", id), zap.String("status", status))
	return s.Get(ctx, id)
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.notFoundOrInternal(err, "event not found", "failed to delete event")
	}
	s.invalidateListings(ctx)
	return nil
}

// Search runs a title search over local published events.
func (s *EventService) Search(ctx context.Context, query string, page, perPage int) (*EventListResult, error) {
	return s.List(ctx, EventListRequest{
		Page:      page,
		PerPage:   perPage,
		Search:    query,
		SourceIDs: []string{models.SourceLocal},
	})
}

// SearchAll runs a title search across local events of every status plus all
// enabled external sources.
func (s *EventService) SearchAll(ctx context.Context, query string, page, perPage int) (*EventListResult, error) {
	return s.List(ctx, EventListRequest{
		Page:    page,
		PerPage: perPage,
		Search:  query,
		Status:  strings.Join([]string{
			string(models.EventStatusPending),
			string(models.EventStatusPublish),
			string(models.EventStatusRejected),
		}, ","),
	})
}

func (s *EventService) buildEvent(ctx context.Context, req SubmitEventRequest, existingID string) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := validatePattern(req.RecurringPattern); err != nil {
		return nil, err
	}

	startDate, _ := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, _ := time.ParseInLocation("2006-01-02", req.EndDate, time.UTC)
		if parsed.Before(startDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
		}
		endDate = &parsed
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = s.cfg.Timezone
	}

	slug, err := s.uniqueSlug(ctx, req.Title, existingID)
	if err != nil {
		return nil, err
	}

	return &models.Event{
		Title:            req.Title,
		Content:          req.Content,
		Slug:             slug,
		EventType:        req.EventType,
		StartDate:        startDate,
		EndDate:          endDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Timezone:         timezone,
		RecurringPattern: req.RecurringPattern,
		ServiceBodyID:    req.ServiceBodyID,
		ContactName:      req.ContactName,
		ContactEmail:     req.ContactEmail,
		LocationName:     req.LocationName,
		LocationAddress:  req.LocationAddress,
		LocationDetails:  req.LocationDetails,
		Categories:       req.Categories,
		Tags:             req.Tags,
		SourceID:         models.SourceLocal,
	}, nil
}

func (s *EventService) decorate(ctx context.Context, event *models.Event) {
	event.ServiceBodyName = s.resolver.ResolveName(ctx, event.ServiceBodyID, event.SourceID)
	event.RecurrenceLabel = schedule.Describe(event.RecurringPattern)
}

func (s *EventService) selectSources(ctx context.Context, requested []string) (bool, []models.ExternalSource, []SourceInfo, error) {
	enabled, err := s.sources.List(ctx, true)
	if err != nil {
		return false, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sources")
	}

	wanted := make(map[string]bool, len(requested))
	for _, id := range requested {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}

	includeLocal := len(wanted) == 0 || wanted[models.SourceLocal]
	infos := []SourceInfo{}
	if includeLocal {
		infos = append(infos, SourceInfo{ID: models.SourceLocal, Name: models.SourceLocal})
	}

	var external []models.ExternalSource
	for _, source := range enabled {
		if len(wanted) > 0 && !wanted[source.ID] {
			continue
		}
		external = append(external, source)
		infos = append(infos, SourceInfo{ID: source.ID, Name: source.Name, URL: source.URL})
	}
	return includeLocal, external, infos, nil
}

func (s *EventService) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	base := slugify(title)
	slug := base
	for attempt := 2; ; attempt++ {
		taken, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
		}
		if !taken {
			return slug, nil
		}
		if attempt > 50 {
			return fmt.Sprintf("%s-%d", base, time.Now().UnixNano()), nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

func (s *EventService) invalidateListings(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, "events:*")
}

// today returns the current civil date in the requested timezone, falling
// back to the configured default and then UTC on unknown zone names.
func (s *EventService) today(timezone string) time.Time {
	if timezone == "" {
		timezone = s.cfg.Timezone
	}
	loc := time.UTC
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		}
	}
	return dateOnly(time.Now().In(loc))
}

func (s *EventService) clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	return page, size
}

func (s *EventService) notFoundOrInternal(err error, notFoundMsg, internalMsg string) error {
	if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrNotFound.Code {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}

func validatePattern(pattern models.RecurrencePattern) error {
	switch pattern.Type {
	case "", models.RecurrenceNone, models.RecurrenceDaily:
	case models.RecurrenceWeekly:
		for _, wd := range pattern.Weekdays {
			if wd < 0 || wd > 6 {
				return appErrors.Clone(appErrors.ErrInvalidRecurrence, "weekday values must be 0-6")
			}
		}
	case models.RecurrenceMonthly:
		switch pattern.MonthlyType {
		case models.MonthlyByDate:
			if pattern.MonthlyDate < 1 || pattern.MonthlyDate > 31 {
				return appErrors.Clone(appErrors.ErrInvalidRecurrence, "monthlyDate must be 1-31")
			}
		case models.MonthlyByWeekday:
		default:
			return appErrors.Clone(appErrors.ErrInvalidRecurrence, "monthlyType must be date or weekday")
		}
	default:
		return appErrors.Clone(appErrors.ErrInvalidRecurrence, fmt.Sprintf("unknown recurrence type %q", pattern.Type))
	}
	if pattern.EndDate != "" {
		if _, err := time.ParseInLocation("2006-01-02", pattern.EndDate, time.UTC); err != nil {
			return appErrors.Clone(appErrors.ErrInvalidRecurrence, "endDate must be YYYY-MM-DD")
		}
	}
	return nil
}

func parseStatuses(raw string) ([]models.EventStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return []models.EventStatus{models.EventStatusPublish}, nil
	}
	var statuses []models.EventStatus
	for _, part := range splitList(raw) {
		status := models.EventStatus(part)
		switch status {
		case models.EventStatusPending, models.EventStatusPublish, models.EventStatusRejected:
			statuses = append(statuses, status)
		default:
			return nil, appErrors.Clone(appErrors.ErrInvalidStatus, fmt.Sprintf("unknown status %q", part))
		}
	}
	return statuses, nil
}

func parseListDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s, expected YYYY-MM-DD", field))
	}
	return &t, nil
}

// filterByWindow applies the date-range or archive semantics. An explicit
// range wins over archive; both ends of the range are inclusive, the end at
// end-of-day. Without a range, archive keeps events that ended before today
// and the default keeps events still running today or later.
func filterByWindow(occurrences []models.Occurrence, startDate, endDate *time.Time, archive bool, today time.Time) []models.Occurrence {
	out := make([]models.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		end := occ.OccurrenceDate
		if occ.OccurrenceEndDate != nil {
			end = *occ.OccurrenceEndDate
		}

		if startDate != nil || endDate != nil {
			if startDate != nil && end.Before(*startDate) {
				continue
			}
			if endDate != nil && occ.OccurrenceDate.After(*endDate) {
				continue
			}
		} else if archive {
			if !end.Before(today) {
				continue
			}
		} else if end.Before(today) {
			continue
		}
		out = append(out, occ)
	}
	return out
}

func sortOccurrences(occurrences []models.Occurrence, orderBy, order string) {
	desc := strings.EqualFold(order, "desc")
	less := func(a, b models.Occurrence) bool {
		switch strings.ToLower(orderBy) {
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "created":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			if !a.OccurrenceDate.Equal(b.OccurrenceDate) {
				return a.OccurrenceDate.Before(b.OccurrenceDate)
			}
			at, bt := derefTime(a.StartTime), derefTime(b.StartTime)
			if at != bt {
				return at < bt
			}
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	}
	sort.SliceStable(occurrences, func(i, j int) bool {
		if desc {
			return less(occurrences[j], occurrences[i])
		}
		return less(occurrences[i], occurrences[j])
	})
}

func paginate(occurrences []models.Occurrence, page, size int) []models.Occurrence {
	offset := (page - 1) * size
	if offset >= len(occurrences) {
		return []models.Occurrence{}
	}
	end := offset + size
	if end > len(occurrences) {
		end = len(occurrences)
	}
	return occurrences[offset:end]
}

func listCacheKey(req EventListRequest) string {
	return fmt.Sprintf("events:list:%d:%d:%s:%s:%s:%s:%s:%s:%s:%s:%t:%s:%s:%s:%s:%s",
		req.Page, req.PerPage, req.Status, req.EventType, req.ServiceBody,
		req.Categories, req.CategoryRelation, req.Tags, req.StartDate, req.EndDate,
		req.Archive, req.Timezone, strings.Join(req.SourceIDs, "|"), req.OrderBy, req.Order, req.Search)
}

func slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	if b.Len() == 0 {
		return "event"
	}
	return b.String()
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func derefTime(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

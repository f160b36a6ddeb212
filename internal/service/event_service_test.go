package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmlt-enabled/mayo-events-api/internal/federation"
	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

type stubEventRepo struct {
	events       []models.Event
	created      *models.Event
	statusUpdate struct {
		id     string
		status models.EventStatus
	}
	listErr error
}

func (s *stubEventRepo) List(_ context.Context, _ models.EventFilter) ([]models.Event, error) {
	return s.events, s.listErr
}

func (s *stubEventRepo) GetByID(_ context.Context, id string) (*models.Event, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (s *stubEventRepo) GetBySlug(_ context.Context, slug string) (*models.Event, error) {
	for i := range s.events {
		if s.events[i].Slug == slug {
			return &s.events[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (s *stubEventRepo) Create(_ context.Context, event *models.Event) error {
	event.ID = "evt-new"
	s.created = event
	return nil
}

func (s *stubEventRepo) Update(_ context.Context, _ *models.Event) error { return nil }

func (s *stubEventRepo) UpdateStatus(_ context.Context, id string, status models.EventStatus) error {
	s.statusUpdate.id = id
	s.statusUpdate.status = status
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Status = status
			return nil
		}
	}
	return appErrors.ErrNotFound
}

func (s *stubEventRepo) Delete(_ context.Context, _ string) error { return nil }

func (s *stubEventRepo) SlugExists(_ context.Context, slug, _ string) (bool, error) {
	for _, event := range s.events {
		if event.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type stubSourceLister struct {
	sources []models.ExternalSource
}

func (s *stubSourceLister) List(_ context.Context, onlyEnabled bool) ([]models.ExternalSource, error) {
	if !onlyEnabled {
		return s.sources, nil
	}
	var enabled []models.ExternalSource
	for _, src := range s.sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled, nil
}

type stubFetcher struct {
	remote  map[string]federation.RemoteEvents
	err     error
	fetched []string
}

func (s *stubFetcher) FetchEvents(_ context.Context, source models.ExternalSource) (federation.RemoteEvents, error) {
	s.fetched = append(s.fetched, source.ID)
	if s.err != nil {
		return federation.RemoteEvents{}, s.err
	}
	return s.remote[source.ID], nil
}

type stubDirectory struct {
	names    map[string]string
	external map[string][]models.ServiceBodyRecord
}

func (s *stubDirectory) ResolveName(_ context.Context, id, _ string) string {
	if name, ok := s.names[id]; ok {
		return name
	}
	return "Unknown"
}

func (s *stubDirectory) GetAll(_ context.Context, _ string) []models.ServiceBodyRecord {
	return nil
}

func (s *stubDirectory) UpdateExternalServiceBodies(sourceID string, records []models.ServiceBodyRecord) {
	if s.external == nil {
		s.external = make(map[string][]models.ServiceBodyRecord)
	}
	s.external[sourceID] = records
}

func newEventService(repo *stubEventRepo, sources *stubSourceLister, fetcher *stubFetcher, dir *stubDirectory) *EventService {
	if sources == nil {
		sources = &stubSourceLister{}
	}
	if fetcher == nil {
		fetcher = &stubFetcher{}
	}
	if dir == nil {
		dir = &stubDirectory{}
	}
	return NewEventService(repo, sources, fetcher, dir, nil, nil, nil, nil, nil, config.EventsConfig{
		DefaultPageSize: 10,
		MaxPageSize:     100,
	})
}

func futureDate(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days).Truncate(24 * time.Hour)
}

func TestListDefaultsToUpcomingPublished(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "past", Title: "Past Event", StartDate: futureDate(-30), SourceID: models.SourceLocal},
		{ID: "soon", Title: "Soon Event", StartDate: futureDate(3), SourceID: models.SourceLocal},
	}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "soon", result.Events[0].ID)
	assert.Equal(t, 1, result.Pagination.TotalCount)
}

func TestListArchiveKeepsOnlyPastEvents(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "past", Title: "Past Event", StartDate: futureDate(-30), SourceID: models.SourceLocal},
		{ID: "soon", Title: "Soon Event", StartDate: futureDate(3), SourceID: models.SourceLocal},
	}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{Archive: true})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "past", result.Events[0].ID)
}

func TestListDateRangeInclusive(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "in", Title: "Inside", StartDate: futureDate(-10), SourceID: models.SourceLocal},
		{ID: "out", Title: "Outside", StartDate: futureDate(20), SourceID: models.SourceLocal},
	}}
	svc := newEventService(repo, nil, nil, nil)

	start := futureDate(-10).Format("2006-01-02")
	end := futureDate(-10).Format("2006-01-02")
	result, err := svc.List(context.Background(), EventListRequest{StartDate: start, EndDate: end})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "in", result.Events[0].ID)
}

func TestListExpandsRecurringEvents(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{{
		ID:        "rec",
		Title:     "Weekly Meeting",
		StartDate: futureDate(1),
		RecurringPattern: models.RecurrencePattern{
			Type:    models.RecurrenceDaily,
			EndDate: futureDate(3).Format("2006-01-02"),
		},
		SourceID: models.SourceLocal,
	}}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Events, 3)
	assert.NotEmpty(t, result.Events[0].RecurrenceLabel)
}

func TestListMergesExternalSources(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "local", Title: "Local Event", StartDate: futureDate(2), SourceID: models.SourceLocal},
	}}
	sources := &stubSourceLister{sources: []models.ExternalSource{
		{ID: "src-1", Name: "Region North", URL: "https://north.example.org", Enabled: true},
		{ID: "src-off", Name: "Disabled", URL: "https://off.example.org"},
	}}
	fetcher := &stubFetcher{remote: map[string]federation.RemoteEvents{
		"src-1": {
			Events: []models.Event{
				{ID: "ext", Title: "External Event", StartDate: futureDate(4), SourceID: "src-1", Status: models.EventStatusPublish},
			},
			ServiceBodies: []models.ServiceBodyRecord{{ID: "7", Name: "Remote Area"}},
		},
	}}
	dir := &stubDirectory{}
	svc := newEventService(repo, sources, fetcher, dir)

	result, err := svc.List(context.Background(), EventListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	assert.Equal(t, []string{"src-1"}, fetcher.fetched)
	assert.Len(t, dir.external["src-1"], 1)
	assert.Len(t, result.Sources, 2)
}

func TestListSourceFailureIsSkipped(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "local", Title: "Local Event", StartDate: futureDate(2), SourceID: models.SourceLocal},
	}}
	sources := &stubSourceLister{sources: []models.ExternalSource{
		{ID: "src-1", Name: "Broken", URL: "https://broken.example.org", Enabled: true},
	}}
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	svc := newEventService(repo, sources, fetcher, nil)

	result, err := svc.List(context.Background(), EventListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "local", result.Events[0].ID)
}

func TestListSortsByStartDateThenTime(t *testing.T) {
	early := "09:00"
	late := "18:00"
	repo := &stubEventRepo{events: []models.Event{
		{ID: "b", Title: "Late", StartDate: futureDate(2), StartTime: &late, SourceID: models.SourceLocal},
		{ID: "a", Title: "Early", StartDate: futureDate(2), StartTime: &early, SourceID: models.SourceLocal},
		{ID: "c", Title: "Next Day", StartDate: futureDate(3), SourceID: models.SourceLocal},
	}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Events, 3)
	assert.Equal(t, "a", result.Events[0].ID)
	assert.Equal(t, "b", result.Events[1].ID)
	assert.Equal(t, "c", result.Events[2].ID)

	desc, err := svc.List(context.Background(), EventListRequest{Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "c", desc.Events[0].ID)
}

func TestListPaginates(t *testing.T) {
	repo := &stubEventRepo{}
	for i := 0; i < 25; i++ {
		repo.events = append(repo.events, models.Event{
			ID:        string(rune('a' + i)),
			Title:     "Event",
			StartDate: futureDate(i + 1),
			SourceID:  models.SourceLocal,
		})
	}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, result.Events, 10)
	assert.Equal(t, 25, result.Pagination.TotalCount)
	assert.Equal(t, 2, result.Pagination.Page)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newEventService(&stubEventRepo{}, nil, nil, nil)

	_, err := svc.List(context.Background(), EventListRequest{Status: "draft"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestListFiltersByTaxonomy(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{
			ID: "ws", Title: "Workshop", StartDate: futureDate(1), SourceID: models.SourceLocal,
			Categories: models.TermList{{Slug: "workshop"}},
		},
		{
			ID: "social", Title: "Social", StartDate: futureDate(1), SourceID: models.SourceLocal,
			Categories: models.TermList{{Slug: "social"}},
		},
	}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{Categories: "workshop"})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "ws", result.Events[0].ID)
}

func TestListCategoryRelationDefaultsToAny(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{
			ID: "ws", Title: "Workshop", StartDate: futureDate(1), SourceID: models.SourceLocal,
			Categories: models.TermList{{Slug: "workshop"}},
		},
		{
			ID: "social", Title: "Social", StartDate: futureDate(1), SourceID: models.SourceLocal,
			Categories: models.TermList{{Slug: "social"}},
		},
	}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{Categories: "workshop,social"})
	require.NoError(t, err)
	assert.Len(t, result.Events, 2)
}

func TestListIgnoresFilterSlugsNoEventCarries(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{
			ID: "ws", Title: "Workshop", StartDate: futureDate(1), SourceID: models.SourceLocal,
			Categories: models.TermList{{Slug: "workshop"}},
		},
	}}
	svc := newEventService(repo, nil, nil, nil)

	result, err := svc.List(context.Background(), EventListRequest{Categories: "nosuchcat"})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "ws", result.Events[0].ID)
}

func TestSubmitLandsPending(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newEventService(repo, nil, nil, nil)

	event, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title:         "Unity Day Picnic",
		EventType:     "event",
		StartDate:     futureDate(14).Format("2006-01-02"),
		ServiceBodyID: "12",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPending, event.Status)
	assert.Equal(t, "unity-day-picnic", event.Slug)
	require.NotNil(t, repo.created)
}

func TestSubmitDeduplicatesSlug(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{{ID: "other", Slug: "unity-day"}}}
	svc := newEventService(repo, nil, nil, nil)

	event, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title:         "Unity Day",
		EventType:     "event",
		StartDate:     futureDate(14).Format("2006-01-02"),
		ServiceBodyID: "12",
	})
	require.NoError(t, err)
	assert.Equal(t, "unity-day-2", event.Slug)
}

func TestSubmitRejectsBadRecurrence(t *testing.T) {
	svc := newEventService(&stubEventRepo{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitEventRequest{
		Title:            "Bad Pattern",
		EventType:        "event",
		StartDate:        futureDate(1).Format("2006-01-02"),
		ServiceBodyID:    "12",
		RecurringPattern: models.RecurrencePattern{Type: "yearly"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRecurrence.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusModeration(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "evt-1", Title: "Pending Event", Status: models.EventStatusPending, StartDate: futureDate(1), SourceID: models.SourceLocal},
	}}
	svc := newEventService(repo, nil, nil, nil)

	event, err := svc.UpdateStatus(context.Background(), "evt-1", "publish")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPublish, event.Status)
	assert.Equal(t, "evt-1", repo.statusUpdate.id)

	_, err = svc.UpdateStatus(context.Background(), "evt-1", "bogus")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestGetBySlugResolvesServiceBody(t *testing.T) {
	repo := &stubEventRepo{events: []models.Event{
		{ID: "evt-1", Slug: "area-assembly", ServiceBodyID: "12", SourceID: models.SourceLocal, StartDate: futureDate(1)},
	}}
	dir := &stubDirectory{names: map[string]string{"12": "River Area"}}
	svc := newEventService(repo, nil, nil, dir)

	event, err := svc.GetBySlug(context.Background(), "area-assembly")
	require.NoError(t, err)
	assert.Equal(t, "River Area", event.ServiceBodyName)

	_, err = svc.GetBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

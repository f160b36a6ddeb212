package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

type eventServiceMock struct {
	listReq   service.EventListRequest
	submitReq service.SubmitEventRequest
	statusID  string
	status    string
	getErr    error
}

func (m *eventServiceMock) List(_ context.Context, req service.EventListRequest) (*service.EventListResult, error) {
	m.listReq = req
	return &service.EventListResult{
		Events:     []models.Occurrence{},
		Pagination: &models.Pagination{Page: 1, PageSize: 10},
	}, nil
}

func (m *eventServiceMock) Get(_ context.Context, id string) (*models.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Event{ID: id}, nil
}

func (m *eventServiceMock) GetBySlug(_ context.Context, slug string) (*models.Event, error) {
	return &models.Event{Slug: slug}, nil
}

func (m *eventServiceMock) Submit(_ context.Context, req service.SubmitEventRequest) (*models.Event, error) {
	m.submitReq = req
	return &models.Event{ID: "evt-new", Status: models.EventStatusPending}, nil
}

func (m *eventServiceMock) Update(_ context.Context, id string, _ service.UpdateEventRequest) (*models.Event, error) {
	return &models.Event{ID: id}, nil
}

func (m *eventServiceMock) UpdateStatus(_ context.Context, id, status string) (*models.Event, error) {
	m.statusID = id
	m.status = status
	return &models.Event{ID: id, Status: models.EventStatus(status)}, nil
}

func (m *eventServiceMock) Delete(_ context.Context, _ string) error { return nil }

func (m *eventServiceMock) Search(_ context.Context, _ string, _, _ int) (*service.EventListResult, error) {
	return &service.EventListResult{Pagination: &models.Pagination{}}, nil
}

func (m *eventServiceMock) SearchAll(_ context.Context, _ string, _, _ int) (*service.EventListResult, error) {
	return &service.EventListResult{Pagination: &models.Pagination{}}, nil
}

func testContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestEventHandlerListParsesQuery(t *testing.T) {
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc)
	c, w := testContext(t, http.MethodGet,
		"/events?page=2&per_page=5&status=publish&categories=workshop,-social&tags=speaker&archive=true&source_ids=local,src-1&order=desc", "")

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, mockSvc.listReq.Page)
	require.Equal(t, 5, mockSvc.listReq.PerPage)
	require.Equal(t, "publish", mockSvc.listReq.Status)
	require.Equal(t, "workshop,-social", mockSvc.listReq.Categories)
	require.True(t, mockSvc.listReq.Archive)
	require.Equal(t, []string{"local", "src-1"}, mockSvc.listReq.SourceIDs)
	require.Equal(t, "desc", mockSvc.listReq.Order)
}

func TestEventHandlerGetNotFound(t *testing.T) {
	mockSvc := &eventServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "event not found")}
	handler := NewEventHandler(mockSvc)
	c, w := testContext(t, http.MethodGet, "/events/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlerSubmit(t *testing.T) {
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc)
	body := `{"title":"Unity Day","event_type":"event","start_date":"2025-08-01","service_body_id":"12"}`
	c, w := testContext(t, http.MethodPost, "/submit-event", body)

	handler.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Unity Day", mockSvc.submitReq.Title)

	var envelope struct {
		Data models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.EventStatusPending, envelope.Data.Status)
}

func TestEventHandlerSubmitRejectsBadJSON(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{})
	c, w := testContext(t, http.MethodPost, "/submit-event", "{not json")

	handler.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerUpdateStatus(t *testing.T) {
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc)
	c, w := testContext(t, http.MethodPatch, "/events/evt-1/status", `{"status":"publish"}`)
	c.Params = gin.Params{{Key: "id", Value: "evt-1"}}

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "evt-1", mockSvc.statusID)
	require.Equal(t, "publish", mockSvc.status)
}

func TestEventHandlerUpdateStatusRequiresStatus(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{})
	c, w := testContext(t, http.MethodPatch, "/events/evt-1/status", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "evt-1"}}

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/dto"
	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type eventService interface {
	List(ctx context.Context, req service.EventListRequest) (*service.EventListResult, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	Submit(ctx context.Context, req service.SubmitEventRequest) (*models.Event, error)
	Update(ctx context.Context, id string, req service.UpdateEventRequest) (*models.Event, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, page, perPage int) (*service.EventListResult, error)
	SearchAll(ctx context.Context, query string, page, perPage int) (*service.EventListResult, error)
}

// EventHandler exposes the event listing, submission and moderation endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// List godoc
// @Summary List events with expanded recurrences
// @Tags Events
// @Produce json
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Param status query string false "Comma list of pending,publish,rejected"
// @Param event_type query string false "Event type"
// @Param service_body query string false "Comma list of service body ids"
// @Param categories query string false "Category slugs, - prefix excludes"
// @Param category_relation query string false "AND or OR"
// @Param tags query string false "Tag slugs, - prefix excludes"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param archive query bool false "Past events only"
// @Param timezone query string false "IANA timezone used to anchor today"
// @Param source_ids query string false "Comma list of source ids"
// @Param order_by query string false "date, title or created"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var query dto.EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	result, err := h.service.List(c.Request.Context(), listRequestFromQuery(query))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, result.Pagination)
}

// Get godoc
// @Summary Get an event by id
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// GetBySlug godoc
// @Summary Get an event by slug
// @Tags Events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Envelope
// @Router /event/{slug} [get]
func (h *EventHandler) GetBySlug(c *gin.Context) {
	event, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Search godoc
// @Summary Search published local events by title
// @Tags Events
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope
// @Router /events/search [get]
func (h *EventHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	result, err := h.service.Search(c.Request.Context(), query.Query, query.Page, query.PerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, result.Pagination)
}

// SearchAll godoc
// @Summary Search events of every status across all sources
// @Tags Events
// @Produce json
// @Param q query string true "Search text"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /events/search-all [get]
func (h *EventHandler) SearchAll(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	result, err := h.service.SearchAll(c.Request.Context(), query.Query, query.Page, query.PerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, result.Pagination)
}

// Submit godoc
// @Summary Submit an event for moderation
// @Tags Events
// @Accept json
// @Produce json
// @Param request body service.SubmitEventRequest true "Event submission"
// @Success 201 {object} response.Envelope
// @Router /submit-event [post]
func (h *EventHandler) Submit(c *gin.Context) {
	var req service.SubmitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	event, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body service.UpdateEventRequest true "Event fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// UpdateStatus godoc
// @Summary Moderate an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.StatusUpdateRequest true "New status"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /events/{id}/status [patch]
func (h *EventHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status is required"))
		return
	}

	event, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Security BearerAuth
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func listRequestFromQuery(query dto.EventListQuery) service.EventListRequest {
	var sourceIDs []string
	for _, id := range strings.Split(query.SourceIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			sourceIDs = append(sourceIDs, id)
		}
	}
	return service.EventListRequest{
		Page:             query.Page,
		PerPage:          query.PerPage,
		Status:           query.Status,
		EventType:        query.EventType,
		ServiceBody:      query.ServiceBody,
		Categories:       query.Categories,
		CategoryRelation: query.CategoryRelation,
		Tags:             query.Tags,
		StartDate:        query.StartDate,
		EndDate:          query.EndDate,
		Archive:          query.Archive,
		Timezone:         query.Timezone,
		SourceIDs:        sourceIDs,
		OrderBy:          query.OrderBy,
		Order:            query.Order,
	}
}

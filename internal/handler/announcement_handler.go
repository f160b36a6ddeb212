package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/dto"
	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type announcementService interface {
	ListActive(ctx context.Context, req service.AnnouncementListRequest) ([]service.ActiveAnnouncement, error)
	Get(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, req service.SaveAnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id string, req service.SaveAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

// AnnouncementHandler exposes the public announcement feed and the admin CRUD.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// ListActive godoc
// @Summary List announcements active today
// @Tags Announcements
// @Produce json
// @Param service_body query string false "Comma list of service body ids"
// @Param categories query string false "Category slugs, - prefix excludes"
// @Param tags query string false "Tag slugs, - prefix excludes"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	var query dto.AnnouncementListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	announcements, err := h.service.ListActive(c.Request.Context(), service.AnnouncementListRequest{
		ServiceBody: query.ServiceBody,
		Categories:  query.Categories,
		Tags:        query.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, nil)
}

// Get godoc
// @Summary Get an announcement by id
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [get]
func (h *AnnouncementHandler) Get(c *gin.Context) {
	announcement, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement, nil)
}

// Create godoc
// @Summary Create an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param request body service.SaveAnnouncementRequest true "Announcement"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.SaveAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	announcement, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// Update godoc
// @Summary Update an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param request body service.SaveAnnouncementRequest true "Announcement fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req service.SaveAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	announcement, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement, nil)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Security BearerAuth
// @Success 204
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type sourceService interface {
	List(ctx context.Context) ([]models.ExternalSource, error)
	Get(ctx context.Context, id string) (*models.ExternalSource, error)
	Create(ctx context.Context, req service.SaveSourceRequest) (*models.ExternalSource, error)
	Update(ctx context.Context, id string, req service.SaveSourceRequest) (*models.ExternalSource, error)
	Delete(ctx context.Context, id string) error
}

// SourceHandler manages external event sources.
type SourceHandler struct {
	service sourceService
}

// NewSourceHandler constructs the handler.
func NewSourceHandler(service sourceService) *SourceHandler {
	return &SourceHandler{service: service}
}

// List godoc
// @Summary List external sources
// @Tags Sources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sources [get]
func (h *SourceHandler) List(c *gin.Context) {
	sources, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sources, nil)
}

// Get godoc
// @Summary Get an external source
// @Tags Sources
// @Produce json
// @Param id path string true "Source ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sources/{id} [get]
func (h *SourceHandler) Get(c *gin.Context) {
	source, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, source, nil)
}

// Create godoc
// @Summary Register an external source
// @Tags Sources
// @Accept json
// @Produce json
// @Param request body service.SaveSourceRequest true "Source"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /sources [post]
func (h *SourceHandler) Create(c *gin.Context) {
	var req service.SaveSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	source, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, source)
}

// Update godoc
// @Summary Update an external source
// @Tags Sources
// @Accept json
// @Produce json
// @Param id path string true "Source ID"
// @Param request body service.SaveSourceRequest true "Source fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sources/{id} [put]
func (h *SourceHandler) Update(c *gin.Context) {
	var req service.SaveSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	source, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, source, nil)
}

// Delete godoc
// @Summary Remove an external source
// @Tags Sources
// @Param id path string true "Source ID"
// @Security BearerAuth
// @Success 204
// @Router /sources/{id} [delete]
func (h *SourceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

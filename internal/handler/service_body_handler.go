package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type serviceBodyProvider interface {
	GetAll(ctx context.Context, sourceID string) []models.ServiceBodyRecord
}

// ServiceBodyHandler exposes the resolver's local service body records.
type ServiceBodyHandler struct {
	resolver serviceBodyProvider
}

// NewServiceBodyHandler constructs the handler.
func NewServiceBodyHandler(resolver serviceBodyProvider) *ServiceBodyHandler {
	return &ServiceBodyHandler{resolver: resolver}
}

// List godoc
// @Summary List service bodies from the configured BMLT root server
// @Tags ServiceBodies
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /service-bodies [get]
func (h *ServiceBodyHandler) List(c *gin.Context) {
	records := h.resolver.GetAll(c.Request.Context(), models.SourceLocal)
	if records == nil {
		records = []models.ServiceBodyRecord{}
	}
	response.JSON(c, http.StatusOK, records, nil)
}

package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/dto"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type exportService interface {
	Generate(ctx context.Context, req service.EventListRequest, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler serves downloadable event listings.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Download the event listing as CSV or PDF
// @Tags Exports
// @Param format query string true "csv or pdf"
// @Security BearerAuth
// @Success 200 {string} string "Document"
// @Router /events/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var query dto.EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.service.Generate(c.Request.Context(), listRequestFromQuery(query), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

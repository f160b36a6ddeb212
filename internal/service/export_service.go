package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
	"github.com/bmlt-enabled/mayo-events-api/pkg/export"
)

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered event listing ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders event listings into downloadable documents.
type ExportService struct {
	events  listComposer
	csv     csvRenderer
	pdf     pdfRenderer
	enabled bool
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(events listComposer, enabled bool, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{events: events, csv: csv, pdf: pdf, enabled: enabled, logger: logger}
}

// Generate renders the listing selected by req in the requested format.
func (s *ExportService) Generate(ctx context.Context, req EventListRequest, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "exports are disabled")
	}

	req.Page = 1
	if req.PerPage <= 0 {
		req.PerPage = feedEventLimit
	}
	result, err := s.events.List(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset, title := buildEventDataset(result.Events)
	timestamp := time.Now().UTC().Format("20060102_150405")

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("events_%s.%s", timestamp, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func buildEventDataset(occurrences []models.Occurrence) (export.Dataset, string) {
	headers := []string{"Date", "Title", "Type", "Status", "Service Body", "Location", "Source"}
	rows := make([]map[string]string, 0, len(occurrences))
	for _, occ := range occurrences {
		date := occ.OccurrenceDate.Format("2006-01-02")
		if occ.StartTime != nil && *occ.StartTime != "" {
			date = date + " " + *occ.StartTime
		}
		location := ""
		if occ.LocationName != nil {
			location = *occ.LocationName
		}
		rows = append(rows, map[string]string{
			"Date":         date,
			"Title":        occ.Title,
			"Type":         occ.EventType,
			"Status":       string(occ.Status),
			"Service Body": occ.ServiceBodyName,
			"Location":     location,
			"Source":       occ.SourceID,
		})
	}
	title := fmt.Sprintf("Events %s", strings.ToUpper(time.Now().UTC().Format("Jan 2006")))
	return export.Dataset{Headers: headers, Rows: rows}, title
}

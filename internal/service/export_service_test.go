package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

func TestExportCSV(t *testing.T) {
	clock := "10:00"
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	occ := feedOccurrence("evt-1", "Workshop", day, &clock)
	occ.EventType = "event"
	occ.Status = models.EventStatusPublish
	occ.ServiceBodyName = "River Area"
	composer := &stubComposer{result: &EventListResult{Events: []models.Occurrence{occ}}}
	svc := NewExportService(composer, true, nil, nil, nil)

	result, err := svc.Generate(context.Background(), EventListRequest{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	out := string(result.Payload)
	assert.Contains(t, out, "Date,Title,Type,Status,Service Body,Location,Source")
	assert.Contains(t, out, "2025-07-01 10:00,Workshop,event,publish,River Area,,local")
}

func TestExportPDF(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	composer := &stubComposer{result: &EventListResult{Events: []models.Occurrence{
		feedOccurrence("evt-1", "Workshop", day, nil),
	}}}
	svc := NewExportService(composer, true, nil, nil, nil)

	result, err := svc.Generate(context.Background(), EventListRequest{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportUnknownFormat(t *testing.T) {
	svc := NewExportService(&stubComposer{result: &EventListResult{}}, true, nil, nil, nil)

	_, err := svc.Generate(context.Background(), EventListRequest{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, appErrors.FromError(err).Code)
}

func TestExportDisabled(t *testing.T) {
	svc := NewExportService(&stubComposer{}, false, nil, nil, nil)

	_, err := svc.Generate(context.Background(), EventListRequest{}, ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, appErrors.FromError(err).Code)
}

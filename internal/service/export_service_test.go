package service

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
	"github.com/noah-isme/tuition-web/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("boom")
}

func fixedExportService(metrics *MetricsService, csv, pdf export.Renderer) *ExportService {
	svc := NewExportService(metrics, nil, csv, pdf)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending", StatusLabel(models.TuitionStatusPending))
	assert.Equal(t, "Completed", StatusLabel(models.TuitionStatusCompleted))
}

func TestExportCSV(t *testing.T) {
	metrics := NewMetricsService()
	svc := fixedExportService(metrics, nil, nil)
	tuitions := []models.Tuition{
		{ID: "1", Subject: "Physics", Class: "Class 9", Budget: 2000, Location: "Mirpur, Dhaka", DaysPerWeek: 3, TimeSlot: "5-7 PM", Status: models.TuitionStatusApproved},
	}

	result, err := svc.Export(tuitions, "")

	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, result.Format)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "my-tuitions-20240309.csv", result.Filename)
	assert.Equal(t, "Subject,Class,Budget,Location,Days/Week,Time Slot,Status\nPhysics,Class 9,2000,\"Mirpur, Dhaka\",3,5-7 PM,Approved\n", string(result.Data))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exports.WithLabelValues("csv")))
}

func TestExportPDF(t *testing.T) {
	svc := fixedExportService(nil, nil, nil)

	result, err := svc.Export(sampleTuitions(), "pdf")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "my-tuitions-20240309.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := fixedExportService(nil, nil, nil)

	_, err := svc.Export(sampleTuitions(), "xlsx")

	assert.True(t, errors.Is(err, appErrors.ErrBadRequest))
}

func TestExportRenderFailure(t *testing.T) {
	svc := fixedExportService(nil, failingRenderer{}, nil)

	_, err := svc.Export(sampleTuitions(), "csv")

	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

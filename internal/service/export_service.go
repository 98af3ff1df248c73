package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
	"github.com/noah-isme/tuition-web/pkg/export"
)

var exportHeaders = []string{"Subject", "Class", "Budget", "Location", "Days/Week", "Time Slot", "Status"}

// ExportResult is a rendered download.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
	Format      export.Format
}

// ExportService renders the student's filtered tuition list as CSV or PDF.
type ExportService struct {
	renderers map[export.Format]export.Renderer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(metrics *MetricsService, logger *zap.Logger, csv, pdf export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		renderers: map[export.Format]export.Renderer{export.FormatCSV: csv, export.FormatPDF: pdf},
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// StatusLabel renders a status for display, e.g. "pending" as "Pending".
func StatusLabel(status models.TuitionStatus) string {
	return cases.Title(language.English).String(string(status))
}

// TuitionDataset lays the tuitions out in the export column order.
func TuitionDataset(tuitions []models.Tuition) export.Dataset {
	rows := make([][]string, 0, len(tuitions))
	for _, t := range tuitions {
		rows = append(rows, []string{
			t.Subject,
			t.Class,
			strconv.Itoa(t.Budget),
			t.Location,
			strconv.Itoa(t.DaysPerWeek),
			t.TimeSlot,
			StatusLabel(t.Status),
		})
	}
	return export.Dataset{Title: "My Tuitions", Headers: exportHeaders, Rows: rows}
}

// Export renders tuitions in the requested format.
func (s *ExportService) Export(tuitions []models.Tuition, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "unsupported export format")
	}
	data, err := s.renderers[format].Render(TuitionDataset(tuitions))
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.ObserveExport(string(format))
	return &ExportResult{
		Data:        data,
		ContentType: format.ContentType(),
		Filename:    fmt.Sprintf("my-tuitions-%s.%s", s.now().UTC().Format("20060102"), format),
		Format:      format,
	}, nil
}

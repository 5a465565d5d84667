package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-availability-api/internal/dto"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
	"github.com/noah-isme/appointment-availability-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type weekAvailability interface {
	Week(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, bool, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportResult is a rendered document ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders week availability into downloadable documents.
type ExportService struct {
	availability weekAvailability
	renderers    map[ExportFormat]renderer
	logger       *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(availability weekAvailability, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(0)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		availability: availability,
		renderers:    map[ExportFormat]renderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:       logger,
	}
}

// ParseExportFormat validates a user supplied format. Empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.InvalidInput("unsupported export format %q", raw)
	}
}

// Week computes the availability for q and renders it in format.
func (s *ExportService) Week(ctx context.Context, q dto.AvailabilityQuery, format ExportFormat) (*ExportResult, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.InvalidInput("unsupported export format %q", format)
	}
	week, _, err := s.availability.Week(ctx, q)
	if err != nil {
		return nil, err
	}

	body, err := r.Render(WeekDataset(week))
	if err != nil {
		s.logger.Error("render availability export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("availability_%s_%s.%s", sanitizeFilename(week.ServiceID), week.WeekStart, format),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

// WeekDataset flattens a week into one row per slot. Days without slots keep
// a single row so the document always shows the full week.
func WeekDataset(week *dto.AvailabilityResponse) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("Availability %s, week of %s (%s)", week.ServiceID, week.WeekStart, week.Timezone),
		Headers: []string{"Date", "Weekday", "Time", "Employees"},
	}
	for _, day := range week.Days {
		if len(day.Slots) == 0 {
			data.Rows = append(data.Rows, []string{day.Date, day.Weekday, "", ""})
			continue
		}
		for _, slot := range day.Slots {
			data.Rows = append(data.Rows, []string{day.Date, day.Weekday, slot.Time, strings.Join(slot.EmployeeIDs, ", ")})
		}
	}
	return data
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

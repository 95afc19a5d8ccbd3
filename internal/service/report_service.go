package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
	"github.com/adisurya/sims-api/pkg/export"
)

// ReportFormat is an export output format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type summaryReader interface {
	Summary(ctx context.Context, filter models.AttendanceSummaryFilter) ([]models.AttendanceSummaryRow, error)
}

// ExportRequest scopes an attendance report export.
type ExportRequest struct {
	CourseID  int64
	DateRange string
	Format    string
}

// Report is a rendered export ready to be streamed to the caller.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders attendance summaries as downloadable CSV or PDF.
type ReportService struct {
	summaries    summaryReader
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	maxRangeDays int
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(summaries summaryReader, maxRangeDays int, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 365
	}
	return &ReportService{
		summaries:    summaries,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		maxRangeDays: maxRangeDays,
		logger:       logger,
		now:          time.Now,
	}
}

// AttendanceExport renders the attendance summary for the requested window.
func (s *ReportService) AttendanceExport(ctx context.Context, req ExportRequest) (*Report, error) {
	format := ReportFormat(req.Format)
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	days := 0
	if req.DateRange != "" && req.DateRange != "all" {
		parsed, err := strconv.Atoi(req.DateRange)
		if err != nil || parsed <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date_range must be \"all\" or a positive number of days")
		}
		if parsed > s.maxRangeDays {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date_range may not exceed %d days", s.maxRangeDays))
		}
		days = parsed
	}

	rows, err := s.summaries.Summary(ctx, models.AttendanceSummaryFilter{CourseID: req.CourseID, Days: days})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}

	dataset := summaryDataset(rows)
	stamp := s.now().Format("20060102")

	switch format {
	case ReportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &Report{
			FileName:    fmt.Sprintf("attendance_report_%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		content, err := s.pdf.Render(dataset, "Attendance Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &Report{
			FileName:    fmt.Sprintf("attendance_report_%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
}

func summaryDataset(rows []models.AttendanceSummaryRow) export.Dataset {
	headers := []string{"Date", "Course", "Present", "Absent", "Late", "Excused"}
	dataset := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    row.Date.Format(dateLayout),
			"Course":  row.CourseName,
			"Present": strconv.Itoa(row.PresentCount),
			"Absent":  strconv.Itoa(row.AbsentCount),
			"Late":    strconv.Itoa(row.LateCount),
			"Excused": strconv.Itoa(row.ExcusedCount),
		})
	}
	return dataset
}

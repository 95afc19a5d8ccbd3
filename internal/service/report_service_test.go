package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type mockSummaryReader struct {
	rows   []models.AttendanceSummaryRow
	filter models.AttendanceSummaryFilter
}

func (m *mockSummaryReader) Summary(_ context.Context, filter models.AttendanceSummaryFilter) ([]models.AttendanceSummaryRow, error) {
	m.filter = filter
	return m.rows, nil
}

func sampleSummaryRows() []models.AttendanceSummaryRow {
	return []models.AttendanceSummaryRow{
		{
			Date:         time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			CourseID:     3,
			CourseName:   "Algebra",
			PresentCount: 18,
			AbsentCount:  2,
			LateCount:    1,
			ExcusedCount: 0,
		},
	}
}

func TestReportServiceCSVExport(t *testing.T) {
	reader := &mockSummaryReader{rows: sampleSummaryRows()}
	svc := NewReportService(reader, 365, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }

	report, err := svc.AttendanceExport(context.Background(), ExportRequest{CourseID: 3, DateRange: "30", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "attendance_report_20250315.csv", report.FileName)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.Equal(t, 30, reader.filter.Days)

	content := string(report.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Course,Present,Absent,Late,Excused", lines[0])
	assert.Equal(t, "2025-03-10,Algebra,18,2,1,0", lines[1])
}

func TestReportServicePDFExport(t *testing.T) {
	reader := &mockSummaryReader{rows: sampleSummaryRows()}
	svc := NewReportService(reader, 365, zap.NewNop())

	report, err := svc.AttendanceExport(context.Background(), ExportRequest{DateRange: "all", Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, bytes.HasPrefix(report.Content, []byte("%PDF")))
	assert.Zero(t, reader.filter.Days)
}

func TestReportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewReportService(&mockSummaryReader{}, 365, zap.NewNop())

	_, err := svc.AttendanceExport(context.Background(), ExportRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRejectsOversizedRange(t *testing.T) {
	svc := NewReportService(&mockSummaryReader{}, 90, zap.NewNop())

	_, err := svc.AttendanceExport(context.Background(), ExportRequest{DateRange: "120", Format: "csv"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

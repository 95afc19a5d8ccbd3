package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/adisurya/sims-api/internal/service"
	"github.com/adisurya/sims-api/pkg/response"
)

// ReportHandler exposes report export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// AttendanceExport godoc
// @Summary Export the attendance summary as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param course_id query int false "Filter by course"
// @Param date_range query string false "\"all\" or a number of days"
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /reports/attendance/export [get]
func (h *ReportHandler) AttendanceExport(c *gin.Context) {
	report, err := h.reports.AttendanceExport(c.Request.Context(), service.ExportRequest{
		CourseID:  queryInt64(c, "course_id"),
		DateRange: c.Query("date_range"),
		Format:    c.Query("format"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(200, report.ContentType, report.Content)
}

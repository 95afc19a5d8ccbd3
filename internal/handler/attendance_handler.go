package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adisurya/sims-api/internal/service"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
	"github.com/adisurya/sims-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Save godoc
// @Summary Replace the attendance roster for a course and date
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SaveRosterRequest true "Roster payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req service.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.SaveRoster(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordRosterSave()
	response.OK(c, "attendance saved", nil)
}

// Roster godoc
// @Summary Enrolled students with any attendance for a date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param course_id query int true "Course ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/roster [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	roster, err := h.attendance.Roster(c.Request.Context(), queryInt64(c, "course_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", roster)
}

// Details godoc
// @Summary Stored attendance records for a course and date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param course_id query int true "Course ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/details [get]
func (h *AttendanceHandler) Details(c *gin.Context) {
	details, err := h.attendance.Details(c.Request.Context(), queryInt64(c, "course_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", details)
}

// Summary godoc
// @Summary Per-date, per-course attendance aggregation
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param course_id query int false "Filter by course"
// @Param date_range query string false "\"all\" or a number of days"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	rows, err := h.attendance.Summary(c.Request.Context(), service.SummaryRequest{
		CourseID:  queryInt64(c, "course_id"),
		DateRange: c.Query("date_range"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", rows)
}

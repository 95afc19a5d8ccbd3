package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	"github.com/adisurya/sims-api/internal/service"
)

type fakeAttendanceRepo struct {
	replaceCalls int
	entries      []models.RosterEntry
	students     []models.RosterStudent
}

func (f *fakeAttendanceRepo) ReplaceRoster(_ context.Context, _ int64, _ time.Time, entries []models.RosterEntry) error {
	f.replaceCalls++
	f.entries = entries
	return nil
}

func (f *fakeAttendanceRepo) RosterStudents(_ context.Context, _ int64, _ time.Time) ([]models.RosterStudent, error) {
	return f.students, nil
}

func (f *fakeAttendanceRepo) Details(_ context.Context, _ int64, _ time.Time) ([]models.AttendanceDetailRow, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) Summary(_ context.Context, _ models.AttendanceSummaryFilter) ([]models.AttendanceSummaryRow, error) {
	return nil, nil
}

type fakeCourseReader struct {
	course *models.Course
	err    error
}

func (f *fakeCourseReader) FindByID(_ context.Context, _ int64) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.course, nil
}

func newAttendanceHandler(repo *fakeAttendanceRepo, courses *fakeCourseReader) *AttendanceHandler {
	svc := service.NewAttendanceService(repo, courses, nil, zap.NewNop())
	return NewAttendanceHandler(svc, nil)
}

func TestAttendanceHandlerSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{}
	handler := newAttendanceHandler(repo, &fakeCourseReader{})

	payload := map[string]interface{}{
		"course_id":       3,
		"attendance_date": "2025-03-10",
		"attendance": map[string]interface{}{
			"5": map[string]string{"status": "present"},
			"7": map[string]string{"status": "absent", "remarks": "sick"},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Save(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.replaceCalls)
	assert.Len(t, repo.entries, 2)
}

func TestAttendanceHandlerSaveRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{}
	handler := newAttendanceHandler(repo, &fakeCourseReader{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Save(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, repo.replaceCalls)
}

func TestAttendanceHandlerSaveRejectsInvalidStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{}
	handler := newAttendanceHandler(repo, &fakeCourseReader{})

	body := []byte(`{"course_id":3,"attendance_date":"2025-03-10","attendance":{"5":{"status":"asleep"}}}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Save(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, repo.replaceCalls)
}

func TestAttendanceHandlerRosterUnknownCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAttendanceHandler(&fakeAttendanceRepo{}, &fakeCourseReader{err: sql.ErrNoRows})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance/roster?course_id=99&date=2025-03-10", nil)

	handler.Roster(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttendanceHandlerRosterSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{students: []models.RosterStudent{{ID: 5, Name: "Ana"}}}
	handler := newAttendanceHandler(repo, &fakeCourseReader{course: &models.Course{ID: 3, Name: "Algebra"}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance/roster?course_id=3&date=2025-03-10", nil)

	handler.Roster(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			CourseName string                 `json:"courseName"`
			Students   []models.RosterStudent `json:"students"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Algebra", envelope.Data.CourseName)
	require.Len(t, envelope.Data.Students, 1)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type mockAttendanceRepo struct {
	replacedCourseID int64
	replacedDate     time.Time
	replacedEntries  []models.RosterEntry
	replaceCalls     int
	replaceErr       error

	rosterStudents []models.RosterStudent
	details        []models.AttendanceDetailRow
	summary        []models.AttendanceSummaryRow
	summaryFilter  models.AttendanceSummaryFilter
}

func (m *mockAttendanceRepo) ReplaceRoster(_ context.Context, courseID int64, date time.Time, entries []models.RosterEntry) error {
	m.replaceCalls++
	m.replacedCourseID = courseID
	m.replacedDate = date
	m.replacedEntries = entries
	return m.replaceErr
}

func (m *mockAttendanceRepo) RosterStudents(_ context.Context, _ int64, _ time.Time) ([]models.RosterStudent, error) {
	return m.rosterStudents, nil
}

func (m *mockAttendanceRepo) Details(_ context.Context, _ int64, _ time.Time) ([]models.AttendanceDetailRow, error) {
	return m.details, nil
}

func (m *mockAttendanceRepo) Summary(_ context.Context, filter models.AttendanceSummaryFilter) ([]models.AttendanceSummaryRow, error) {
	m.summaryFilter = filter
	return m.summary, nil
}

type mockCourseReader struct {
	course *models.Course
	err    error
}

func (m *mockCourseReader) FindByID(_ context.Context, _ int64) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

func newAttendanceService(repo *mockAttendanceRepo, courses *mockCourseReader) *AttendanceService {
	return NewAttendanceService(repo, courses, nil, zap.NewNop())
}

func TestAttendanceServiceSaveRosterPassesEntriesThrough(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockCourseReader{})

	remark := "late bus"
	err := svc.SaveRoster(context.Background(), SaveRosterRequest{
		CourseID: 3,
		Date:     "2025-03-10",
		Entries: map[int64]RosterEntryInput{
			7: {Status: "late", Remarks: &remark},
			5: {Status: "present"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, repo.replaceCalls)
	assert.Equal(t, int64(3), repo.replacedCourseID)
	assert.Equal(t, "2025-03-10", repo.replacedDate.Format("2006-01-02"))

	require.Len(t, repo.replacedEntries, 2)
	assert.Equal(t, int64(5), repo.replacedEntries[0].StudentID)
	assert.Equal(t, models.AttendanceStatusPresent, repo.replacedEntries[0].Status)
	assert.Equal(t, int64(7), repo.replacedEntries[1].StudentID)
	assert.Equal(t, models.AttendanceStatusLate, repo.replacedEntries[1].Status)
	require.NotNil(t, repo.replacedEntries[1].Remarks)
	assert.Equal(t, "late bus", *repo.replacedEntries[1].Remarks)
}

func TestAttendanceServiceSaveRosterRejectsEmptyEntries(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockCourseReader{})

	err := svc.SaveRoster(context.Background(), SaveRosterRequest{
		CourseID: 3,
		Date:     "2025-03-10",
		Entries:  map[int64]RosterEntryInput{},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.replaceCalls)
}

func TestAttendanceServiceSaveRosterRejectsUnknownStatus(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockCourseReader{})

	err := svc.SaveRoster(context.Background(), SaveRosterRequest{
		CourseID: 3,
		Date:     "2025-03-10",
		Entries:  map[int64]RosterEntryInput{5: {Status: "asleep"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.replaceCalls)
}

func TestAttendanceServiceSaveRosterRejectsBadDate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockCourseReader{})

	err := svc.SaveRoster(context.Background(), SaveRosterRequest{
		CourseID: 3,
		Date:     "10-03-2025",
		Entries:  map[int64]RosterEntryInput{5: {Status: "present"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.replaceCalls)
}

func TestAttendanceServiceSaveRosterWrapsRepositoryFailure(t *testing.T) {
	repo := &mockAttendanceRepo{replaceErr: errors.New("boom")}
	svc := newAttendanceService(repo, &mockCourseReader{})

	err := svc.SaveRoster(context.Background(), SaveRosterRequest{
		CourseID: 3,
		Date:     "2025-03-10",
		Entries:  map[int64]RosterEntryInput{5: {Status: "present"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRosterUnknownCourse(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockCourseReader{err: sql.ErrNoRows})

	_, err := svc.Roster(context.Background(), 99, "2025-03-10")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRosterReturnsCourseName(t *testing.T) {
	repo := &mockAttendanceRepo{rosterStudents: []models.RosterStudent{{ID: 5, Name: "Ana"}}}
	svc := newAttendanceService(repo, &mockCourseReader{course: &models.Course{ID: 3, Name: "Algebra"}})

	resp, err := svc.Roster(context.Background(), 3, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "Algebra", resp.CourseName)
	require.Len(t, resp.Students, 1)
	assert.Equal(t, "Ana", resp.Students[0].Name)
}

func TestAttendanceServiceSummaryParsesDateRange(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockCourseReader{})

	_, err := svc.Summary(context.Background(), SummaryRequest{CourseID: 2, DateRange: "30"})
	require.NoError(t, err)
	assert.Equal(t, 30, repo.summaryFilter.Days)
	assert.Equal(t, int64(2), repo.summaryFilter.CourseID)

	_, err = svc.Summary(context.Background(), SummaryRequest{DateRange: "all"})
	require.NoError(t, err)
	assert.Zero(t, repo.summaryFilter.Days)

	_, err = svc.Summary(context.Background(), SummaryRequest{DateRange: "soon"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adisurya/sims-api/internal/models"
)

func newAttendanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func strPtr(s string) *string { return &s }

func TestAttendanceRepositoryReplaceRoster(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	entries := []models.RosterEntry{
		{StudentID: 5, Status: models.AttendanceStatusPresent},
		{StudentID: 6, Status: models.AttendanceStatusAbsent, Remarks: strPtr("sick")},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance").
		WithArgs(int64(3), date).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(int64(5), int64(3), date, models.AttendanceStatusPresent, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(int64(6), int64(3), date, models.AttendanceStatusAbsent, strPtr("sick"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.ReplaceRoster(context.Background(), 3, date, entries)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceRosterRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	entries := []models.RosterEntry{
		{StudentID: 5, Status: models.AttendanceStatusPresent},
		{StudentID: 6, Status: models.AttendanceStatusAbsent},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance").
		WithArgs(int64(3), date).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(int64(5), int64(3), date, models.AttendanceStatusPresent, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(int64(6), int64(3), date, models.AttendanceStatusAbsent, nil, sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceRoster(context.Background(), 3, date, entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "student 6")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceRosterRollsBackOnDeleteFailure(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance").
		WithArgs(int64(3), date).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.ReplaceRoster(context.Background(), 3, date, []models.RosterEntry{{StudentID: 5, Status: models.AttendanceStatusPresent}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDetails(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "student_name", "status", "remarks"}).
		AddRow(int64(1), int64(5), "Alice", "present", nil).
		AddRow(int64(2), int64(6), "Bob", "absent", "sick")
	mock.ExpectQuery("SELECT a.id, a.student_id, s.name AS student_name").
		WithArgs(int64(3), date).
		WillReturnRows(rows)

	details, err := repo.Details(context.Background(), 3, date)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, int64(5), details[0].StudentID)
	assert.Equal(t, models.AttendanceStatusAbsent, details[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummaryFilters(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"date", "course_id", "course_name", "present_count", "absent_count", "late_count", "excused_count"}).
		AddRow(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), int64(3), "Mathematics", 20, 2, 1, 0)
	mock.ExpectQuery("SELECT a.attendance_date AS date, a.course_id, c.name AS course_name").
		WithArgs(30, int64(3)).
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background(), models.AttendanceSummaryFilter{CourseID: 3, Days: 30})
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 20, summary[0].PresentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

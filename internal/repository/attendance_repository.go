package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/adisurya/sims-api/internal/models"
)

// AttendanceRepository handles persistence of attendance rosters.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ReplaceRoster replaces every attendance row for (courseID, date) with the
// submitted entries inside one transaction. The delete is unconditional, so
// after commit the stored set equals the submitted set exactly; on any
// failure the whole batch rolls back and no partial roster is visible.
func (r *AttendanceRepository) ReplaceRoster(ctx context.Context, courseID int64, date time.Time, entries []models.RosterEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster replace: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM attendance WHERE course_id = $1 AND attendance_date = $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, courseID, date); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}

	const insertQuery = `INSERT INTO attendance (student_id, course_id, attendance_date, status, remarks, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, insertQuery, entry.StudentID, courseID, date, entry.Status, entry.Remarks, now); err != nil {
			return fmt.Errorf("insert roster entry for student %d: %w", entry.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster replace: %w", err)
	}
	committed = true
	return nil
}

// RosterStudents lists students with an active enrollment in the course,
// left-joined with any attendance already stored for the date.
func (r *AttendanceRepository) RosterStudents(ctx context.Context, courseID int64, date time.Time) ([]models.RosterStudent, error) {
	const query = `SELECT s.id, s.name, a.status AS attendance_status, a.remarks
        FROM students s
        JOIN enrollments e ON e.student_id = s.id
        LEFT JOIN attendance a ON a.student_id = s.id AND a.course_id = $1 AND a.attendance_date = $2
        WHERE e.course_id = $1 AND e.status = $3
        ORDER BY s.name`
	var students []models.RosterStudent
	if err := r.db.SelectContext(ctx, &students, query, courseID, date, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("roster students: %w", err)
	}
	return students, nil
}

// Details returns the stored attendance rows for a course and date.
func (r *AttendanceRepository) Details(ctx context.Context, courseID int64, date time.Time) ([]models.AttendanceDetailRow, error) {
	const query = `SELECT a.id, a.student_id, s.name AS student_name, a.status, a.remarks
        FROM attendance a
        JOIN students s ON s.id = a.student_id
        WHERE a.course_id = $1 AND a.attendance_date = $2
        ORDER BY s.name`
	var details []models.AttendanceDetailRow
	if err := r.db.SelectContext(ctx, &details, query, courseID, date); err != nil {
		return nil, fmt.Errorf("attendance details: %w", err)
	}
	return details, nil
}

// Summary aggregates per-status counts grouped by date and course, newest
// dates first. Days == 0 applies no date restriction.
func (r *AttendanceRepository) Summary(ctx context.Context, filter models.AttendanceSummaryFilter) ([]models.AttendanceSummaryRow, error) {
	query := `SELECT a.attendance_date AS date, a.course_id, c.name AS course_name,
        COUNT(*) FILTER (WHERE a.status = 'present') AS present_count,
        COUNT(*) FILTER (WHERE a.status = 'absent') AS absent_count,
        COUNT(*) FILTER (WHERE a.status = 'late') AS late_count,
        COUNT(*) FILTER (WHERE a.status = 'excused') AS excused_count
        FROM attendance a
        JOIN courses c ON c.id = a.course_id
        WHERE 1=1`
	args := []interface{}{}
	if filter.Days > 0 {
		query += fmt.Sprintf(" AND a.attendance_date >= CURRENT_DATE - $%d::int", len(args)+1)
		args = append(args, filter.Days)
	}
	if filter.CourseID > 0 {
		query += fmt.Sprintf(" AND a.course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	query += " GROUP BY a.attendance_date, a.course_id, c.name ORDER BY a.attendance_date DESC, c.name"

	var rows []models.AttendanceSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return rows, nil
}

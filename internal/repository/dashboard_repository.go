package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/adisurya/sims-api/internal/models"
)

// MonthlyEnrollmentCount is the raw per-month aggregation row.
type MonthlyEnrollmentCount struct {
	Month string `db:"month"`
	Count int    `db:"count"`
}

// CourseEnrollmentCount is the raw per-course distribution row.
type CourseEnrollmentCount struct {
	Name  string `db:"name"`
	Count int    `db:"student_count"`
}

// DashboardRepository serves read-only aggregations for the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountStudents returns the total number of student rows.
func (r *DashboardRepository) CountStudents(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// CountCourses returns the total number of course rows.
func (r *DashboardRepository) CountCourses(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}

// CountActiveEnrollments returns the number of active enrollments.
func (r *DashboardRepository) CountActiveEnrollments(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments WHERE status = $1", models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return total, nil
}

// EnrollmentsByMonth groups enrollments created within the last N months by
// calendar month, oldest first. Month values use the YYYY-MM format.
func (r *DashboardRepository) EnrollmentsByMonth(ctx context.Context, months int) ([]MonthlyEnrollmentCount, error) {
	const query = `SELECT TO_CHAR(enrollment_date, 'YYYY-MM') AS month, COUNT(*) AS count
        FROM enrollments
        WHERE enrollment_date >= CURRENT_DATE - ($1 || ' months')::interval
        GROUP BY month
        ORDER BY month ASC`
	var rows []MonthlyEnrollmentCount
	if err := r.db.SelectContext(ctx, &rows, query, months); err != nil {
		return nil, fmt.Errorf("enrollments by month: %w", err)
	}
	return rows, nil
}

// CourseDistribution returns the most-enrolled courses with their counts.
func (r *DashboardRepository) CourseDistribution(ctx context.Context, limit int) ([]CourseEnrollmentCount, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT c.name, COUNT(e.id) AS student_count
        FROM courses c
        LEFT JOIN enrollments e ON c.id = e.course_id
        GROUP BY c.id, c.name
        ORDER BY student_count DESC
        LIMIT %d`, limit)
	var rows []CourseEnrollmentCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("course distribution: %w", err)
	}
	return rows, nil
}

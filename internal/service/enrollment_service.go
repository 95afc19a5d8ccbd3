package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	"github.com/adisurya/sims-api/internal/repository"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID int64) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, id int64, date *time.Time, status *models.EnrollmentStatus) error
	Delete(ctx context.Context, id int64) error
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

// CreateEnrollmentRequest is the payload for enrolling a student in a course.
type CreateEnrollmentRequest struct {
	StudentID      int64  `json:"student_id" validate:"required,gt=0"`
	CourseID       int64  `json:"course_id" validate:"required,gt=0"`
	EnrollmentDate string `json:"enrollment_date"`
	Status         string `json:"status" validate:"omitempty,oneof=active completed dropped"`
}

// UpdateEnrollmentRequest updates the mutable fields of an enrollment. The
// (student, course) pair itself is immutable; re-linking means delete and
// re-create.
type UpdateEnrollmentRequest struct {
	EnrollmentDate *string `json:"enrollment_date"`
	Status         *string `json:"status" validate:"omitempty,oneof=active completed dropped"`
}

// EnrollmentService guards enrollment creation and serves enrollment queries.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, courses courseReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, validator: validate, logger: logger}
}

// List returns enrollments joined with student and course names.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one enrollment with joined names.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return detail, nil
}

// Create enrolls a student in a course. Existence is checked student-first so
// the caller gets the most specific failure, and the unique constraint on
// (student_id, course_id) backstops the duplicate pre-check under concurrency.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	exists, err := s.repo.Exists(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
	}

	enrollment := &models.Enrollment{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Status:    models.EnrollmentStatus(req.Status),
	}
	if req.EnrollmentDate != "" {
		date, err := time.Parse(dateLayout, req.EnrollmentDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment date, expected YYYY-MM-DD")
		}
		enrollment.EnrollmentDate = date
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			// Lost a race with a concurrent enrollment of the same pair.
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
		}
		s.logger.Error("enrollment create failed",
			zap.Int64("student_id", req.StudentID),
			zap.Int64("course_id", req.CourseID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// Update modifies the enrollment date and/or status.
func (s *EnrollmentService) Update(ctx context.Context, id int64, req UpdateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if req.EnrollmentDate == nil && req.Status == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	var date *time.Time
	if req.EnrollmentDate != nil {
		parsed, err := time.Parse(dateLayout, *req.EnrollmentDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment date, expected YYYY-MM-DD")
		}
		date = &parsed
	}
	var status *models.EnrollmentStatus
	if req.Status != nil {
		st := models.EnrollmentStatus(*req.Status)
		status = &st
	}

	if err := s.repo.Update(ctx, id, date, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	return s.Get(ctx, id)
}

// Delete removes an enrollment. Attendance and grade history is kept.
func (s *EnrollmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	return nil
}

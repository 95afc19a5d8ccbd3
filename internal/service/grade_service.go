package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
}

// SaveGradeRequest is the payload for recording or updating a grade.
type SaveGradeRequest struct {
	StudentID int64   `json:"student_id" validate:"required,gt=0"`
	CourseID  int64   `json:"course_id" validate:"required,gt=0"`
	Grade     float64 `json:"grade" validate:"gte=0,lte=100"`
	Comments  string  `json:"comments"`
}

// GradeService records numeric grades. Grades are intentionally independent
// of enrollment status: dropping a course leaves its grades in place.
type GradeService struct {
	repo      gradeRepository
	students  studentReader
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, students studentReader, courses courseReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, students: students, courses: courses, validator: validate, logger: logger}
}

// List returns grades joined with student and course names.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return rows, nil
}

// Get returns one grade by ID.
func (s *GradeService) Get(ctx context.Context, id int64) (*models.Grade, error) {
	return s.find(ctx, id)
}

// Create records a new grade.
func (s *GradeService) Create(ctx context.Context, req SaveGradeRequest) (*models.Grade, error) {
	if err := s.validateRefs(ctx, req); err != nil {
		return nil, err
	}
	grade := &models.Grade{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Grade:     req.Grade,
		Comments:  req.Comments,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		s.logger.Error("grade create failed",
			zap.Int64("student_id", req.StudentID),
			zap.Int64("course_id", req.CourseID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// Update replaces an existing grade's fields.
func (s *GradeService) Update(ctx context.Context, id int64, req SaveGradeRequest) (*models.Grade, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, req); err != nil {
		return nil, err
	}
	grade := &models.Grade{
		ID:        id,
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Grade:     req.Grade,
		Comments:  req.Comments,
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// Delete removes a grade record.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

func (s *GradeService) find(ctx context.Context, id int64) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

func (s *GradeService) validateRefs(ctx context.Context, req SaveGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceRepository interface {
	ReplaceRoster(ctx context.Context, courseID int64, date time.Time, entries []models.RosterEntry) error
	RosterStudents(ctx context.Context, courseID int64, date time.Time) ([]models.RosterStudent, error)
	Details(ctx context.Context, courseID int64, date time.Time) ([]models.AttendanceDetailRow, error)
	Summary(ctx context.Context, filter models.AttendanceSummaryFilter) ([]models.AttendanceSummaryRow, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// RosterEntryInput is one submitted attendance mark.
type RosterEntryInput struct {
	Status  string  `json:"status" validate:"required,attendance_status"`
	Remarks *string `json:"remarks"`
}

// SaveRosterRequest carries a full day's attendance for one course. Entries
// are keyed by student ID, so a student can appear at most once.
type SaveRosterRequest struct {
	CourseID int64                      `json:"course_id" validate:"required,gt=0"`
	Date     string                     `json:"attendance_date" validate:"required"`
	Entries  map[int64]RosterEntryInput `json:"attendance" validate:"required,min=1,dive"`
}

// SummaryRequest scopes the past-attendance aggregation. DateRange is either
// "all" or a positive number of days counted back from today.
type SummaryRequest struct {
	CourseID  int64  `json:"course_id"`
	DateRange string `json:"date_range"`
}

// RosterResponse pairs the course name with its enrolled students.
type RosterResponse struct {
	CourseName string                 `json:"courseName"`
	Students   []models.RosterStudent `json:"students"`
}

// DetailsResponse pairs the course name with stored attendance rows.
type DetailsResponse struct {
	CourseName string                       `json:"courseName"`
	Details    []models.AttendanceDetailRow `json:"details"`
}

// AttendanceService coordinates roster saves and attendance queries.
type AttendanceService struct {
	repo      attendanceRepository
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, courses courseReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, courses: courses, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// SaveRoster replaces the attendance roster for one course and date. The
// submitted entries are trusted as-is: they are not filtered against active
// enrollments, matching the behaviour the frontend depends on.
func (s *AttendanceService) SaveRoster(ctx context.Context, req SaveRosterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	for studentID := range req.Entries {
		if studentID <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, "student ids must be positive integers")
		}
	}

	entries := make([]models.RosterEntry, 0, len(req.Entries))
	for studentID, input := range req.Entries {
		entries = append(entries, models.RosterEntry{
			StudentID: studentID,
			Status:    models.AttendanceStatus(input.Status),
			Remarks:   input.Remarks,
		})
	}
	// Map iteration order is random; keep inserts deterministic.
	sort.Slice(entries, func(i, j int) bool { return entries[i].StudentID < entries[j].StudentID })

	if err := s.repo.ReplaceRoster(ctx, req.CourseID, date, entries); err != nil {
		s.logger.Error("roster replace failed",
			zap.Int64("course_id", req.CourseID),
			zap.String("date", req.Date),
			zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return nil
}

// Roster returns the course name and enrolled students for a date, including
// any attendance already recorded.
func (s *AttendanceService) Roster(ctx context.Context, courseID int64, dateStr string) (*RosterResponse, error) {
	course, date, err := s.resolveCourseAndDate(ctx, courseID, dateStr)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.RosterStudents(ctx, courseID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return &RosterResponse{CourseName: course.Name, Students: students}, nil
}

// Details returns the stored attendance rows for a course and date.
func (s *AttendanceService) Details(ctx context.Context, courseID int64, dateStr string) (*DetailsResponse, error) {
	course, date, err := s.resolveCourseAndDate(ctx, courseID, dateStr)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.Details(ctx, courseID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance details")
	}
	return &DetailsResponse{CourseName: course.Name, Details: details}, nil
}

// Summary returns per-status counts grouped by date and course.
func (s *AttendanceService) Summary(ctx context.Context, req SummaryRequest) ([]models.AttendanceSummaryRow, error) {
	days := 0
	if req.DateRange != "" && req.DateRange != "all" {
		parsed, err := strconv.Atoi(req.DateRange)
		if err != nil || parsed <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date_range must be \"all\" or a positive number of days")
		}
		days = parsed
	}
	rows, err := s.repo.Summary(ctx, models.AttendanceSummaryFilter{CourseID: req.CourseID, Days: days})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	return rows, nil
}

func (s *AttendanceService) resolveCourseAndDate(ctx context.Context, courseID int64, dateStr string) (*models.Course, time.Time, error) {
	if courseID <= 0 {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if dateStr == "" {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, date, nil
}

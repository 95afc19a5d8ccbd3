package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/dto"
	"github.com/adisurya/sims-api/internal/repository"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

const (
	dashboardCacheKey     = "dashboard:stats"
	dashboardMonths       = 6
	dashboardCourseSeries = 5
)

type dashboardRepository interface {
	CountStudents(ctx context.Context) (int, error)
	CountCourses(ctx context.Context) (int, error)
	CountActiveEnrollments(ctx context.Context) (int, error)
	EnrollmentsByMonth(ctx context.Context, months int) ([]repository.MonthlyEnrollmentCount, error)
	CourseDistribution(ctx context.Context, limit int) ([]repository.CourseEnrollmentCount, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DashboardService assembles the dashboard statistics payload, caching the
// assembled result in Redis.
type DashboardService struct {
	repo    dashboardRepository
	cache   statsCache
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil when
// Redis is disabled; metrics may be nil in tests.
func NewDashboardService(repo dashboardRepository, cache statsCache, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, metrics: metrics, logger: logger, now: time.Now}
}

// Stats returns the headline counts plus the six-month enrollment series and
// the top-course distribution.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if s.cache != nil {
		var cached dto.DashboardStats
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	students, err := s.repo.CountStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	courses, err := s.repo.CountCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	enrollments, err := s.repo.CountActiveEnrollments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	monthly, err := s.repo.EnrollmentsByMonth(ctx, dashboardMonths)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	distribution, err := s.repo.CourseDistribution(ctx, dashboardCourseSeries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}

	stats := &dto.DashboardStats{
		TotalStudents:     students,
		TotalCourses:      courses,
		ActiveEnrollments: enrollments,
		EnrollmentData:    s.enrollmentSeries(monthly),
		CourseData:        courseSeries(distribution),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached stats payload. Called after writes that change
// the dashboard numbers.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// enrollmentSeries builds a fixed six-month window ending at the current
// month. Months without enrollments appear with a zero value.
func (s *DashboardService) enrollmentSeries(rows []repository.MonthlyEnrollmentCount) dto.ChartSeries {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Month] = row.Count
	}

	series := dto.ChartSeries{
		Labels: make([]string, 0, dashboardMonths),
		Values: make([]int, 0, dashboardMonths),
	}
	now := s.now()
	// Anchor at the first of the month so stepping back never skips short months.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := dashboardMonths - 1; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		key := month.Format("2006-01")
		series.Labels = append(series.Labels, month.Format("Jan"))
		series.Values = append(series.Values, counts[key])
	}
	return series
}

func courseSeries(rows []repository.CourseEnrollmentCount) dto.ChartSeries {
	series := dto.ChartSeries{
		Labels: make([]string, 0, len(rows)),
		Values: make([]int, 0, len(rows)),
	}
	for _, row := range rows {
		series.Labels = append(series.Labels, row.Name)
		series.Values = append(series.Values, row.Count)
	}
	return series
}

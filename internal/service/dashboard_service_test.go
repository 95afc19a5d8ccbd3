package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/repository"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type mockDashboardRepo struct {
	students     int
	courses      int
	enrollments  int
	monthly      []repository.MonthlyEnrollmentCount
	distribution []repository.CourseEnrollmentCount
	countCalls   int
}

func (m *mockDashboardRepo) CountStudents(_ context.Context) (int, error) {
	m.countCalls++
	return m.students, nil
}

func (m *mockDashboardRepo) CountCourses(_ context.Context) (int, error) {
	return m.courses, nil
}

func (m *mockDashboardRepo) CountActiveEnrollments(_ context.Context) (int, error) {
	return m.enrollments, nil
}

func (m *mockDashboardRepo) EnrollmentsByMonth(_ context.Context, _ int) ([]repository.MonthlyEnrollmentCount, error) {
	return m.monthly, nil
}

func (m *mockDashboardRepo) CourseDistribution(_ context.Context, _ int) ([]repository.CourseEnrollmentCount, error) {
	return m.distribution, nil
}

type stubStatsCache struct {
	store map[string][]byte
}

func (s *stubStatsCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubStatsCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubStatsCache) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func TestDashboardServiceStatsBuildsSeries(t *testing.T) {
	repo := &mockDashboardRepo{
		students:    120,
		courses:     8,
		enrollments: 95,
		monthly: []repository.MonthlyEnrollmentCount{
			{Month: "2025-02", Count: 4},
			{Month: "2025-03", Count: 9},
		},
		distribution: []repository.CourseEnrollmentCount{
			{Name: "Algebra", Count: 30},
			{Name: "Biology", Count: 25},
		},
	}
	svc := NewDashboardService(repo, nil, time.Minute, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC) }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.TotalStudents)
	assert.Equal(t, 8, stats.TotalCourses)
	assert.Equal(t, 95, stats.ActiveEnrollments)

	// Six-month window ending March 2025; Oct..Jan have no enrollments.
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, stats.EnrollmentData.Labels)
	assert.Equal(t, []int{0, 0, 0, 0, 4, 9}, stats.EnrollmentData.Values)

	assert.Equal(t, []string{"Algebra", "Biology"}, stats.CourseData.Labels)
	assert.Equal(t, []int{30, 25}, stats.CourseData.Values)
}

func TestDashboardServiceStatsServedFromCache(t *testing.T) {
	repo := &mockDashboardRepo{students: 1}
	cache := &stubStatsCache{}
	svc := NewDashboardService(repo, cache, time.Minute, nil, zap.NewNop())

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.countCalls)

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls, "second read must hit the cache")
}

func TestDashboardServiceStatsRecordsCacheMetrics(t *testing.T) {
	repo := &mockDashboardRepo{students: 1}
	cache := &stubStatsCache{}
	metrics := NewMetricsService()
	svc := NewDashboardService(repo, cache, time.Minute, metrics, zap.NewNop())

	// Cold cache: one miss.
	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))

	// Warm cache: one hit.
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
}

func TestDashboardServiceInvalidateDropsCache(t *testing.T) {
	repo := &mockDashboardRepo{students: 1}
	cache := &stubStatsCache{}
	svc := NewDashboardService(repo, cache, time.Minute, nil, zap.NewNop())

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	svc.Invalidate(context.Background())

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.countCalls)
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adisurya/sims-api/internal/models"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type mockStudentRepo struct {
	students   []models.Student
	total      int
	filter     models.StudentFilter
	student    *models.Student
	findErr    error
	emailTaken bool
	created    *models.Student
}

func (m *mockStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.filter = filter
	return m.students, m.total, nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, _ int64) (*models.Student, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.student, nil
}

func (m *mockStudentRepo) ExistsByEmail(_ context.Context, _ string, _ int64) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = 11
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(_ context.Context, _ *models.Student) error {
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func (m *mockStudentRepo) Recent(_ context.Context, _ int) ([]models.Student, error) {
	return m.students, nil
}

func TestStudentServiceListClampsPagination(t *testing.T) {
	repo := &mockStudentRepo{total: 3}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: -5, PageSize: 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.filter.Page)
	assert.Equal(t, maxPageSize, repo.filter.PageSize)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestStudentServiceListRejectsBadStatus(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, zap.NewNop())

	_, _, err := svc.List(context.Background(), models.StudentFilter{Status: "sleeping"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateDefaultsStatus(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:  "Ana Silva",
		Email: "ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockStudentRepo{emailTaken: true}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:  "Ana Silva",
		Email: "ana@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestStudentServiceCreateParsesDateOfBirth(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	dob := "2008-06-01"
	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:        "Ana Silva",
		Email:       "ana@example.com",
		DateOfBirth: &dob,
	})
	require.NoError(t, err)
	require.NotNil(t, student.DateOfBirth)
	assert.Equal(t, "2008-06-01", student.DateOfBirth.Format("2006-01-02"))

	bad := "01/06/2008"
	_, err = svc.Create(context.Background(), CreateStudentRequest{
		Name:        "Ana Silva",
		Email:       "ana2@example.com",
		DateOfBirth: &bad,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	repo := &mockStudentRepo{findErr: sql.ErrNoRows}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "student not found", appErr.Message)
}

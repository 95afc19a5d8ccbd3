package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/adisurya/sims-api/internal/models"
	"github.com/adisurya/sims-api/pkg/config"
	appErrors "github.com/adisurya/sims-api/pkg/errors"
)

type mockUserRepo struct {
	user           *models.User
	userErr        error
	usernameTaken  bool
	emailTaken     bool
	created        *models.User
	refreshTokens  []*models.RefreshToken
	storedToken    *models.RefreshToken
	storedTokenErr error
	revokedIDs     []string
	revokedUsers   []int64
	lastLoginCalls int
}

func (m *mockUserRepo) FindByUsername(_ context.Context, _ string) (*models.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, _ int64) (*models.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, _ string) (bool, error) {
	return m.usernameTaken, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, _ string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = 7
	m.created = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, _ int64, _ time.Time) error {
	m.lastLoginCalls++
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	token.ID = "rt-1"
	m.refreshTokens = append(m.refreshTokens, token)
	return nil
}

func (m *mockUserRepo) FindRefreshToken(_ context.Context, _ string) (*models.RefreshToken, error) {
	if m.storedTokenErr != nil {
		return nil, m.storedTokenErr
	}
	return m.storedToken, nil
}

func (m *mockUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(_ context.Context, userID int64) error {
	m.revokedUsers = append(m.revokedUsers, userID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        15 * time.Minute,
		RefreshExpiration: 24 * time.Hour,
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginIssuesTokenPair(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID:           7,
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleAdmin,
	}}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	require.Len(t, repo.refreshTokens, 1)
	assert.Equal(t, 1, repo.lastLoginCalls)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		Username:     "admin",
		PasswordHash: hashPassword(t, "secret123"),
	}}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownUserSameError(t *testing.T) {
	repo := &mockUserRepo{userErr: sql.ErrNoRows}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID:           7,
		Username:     "admin",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleAdmin,
	}}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "newbie",
		Password: "secret123",
		Email:    "new@example.com",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "teacher1",
		Password: "secret123",
		Email:    "t@example.com",
		Role:     "teacher",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.ID)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "secret123", repo.created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("secret123")))
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{usernameTaken: true}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "admin",
		Password: "secret123",
		Email:    "a@example.com",
		Role:     "admin",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: 7, Username: "admin", Role: models.RoleAdmin},
		storedToken: &models.RefreshToken{
			ID:        "rt-old",
			UserID:    7,
			Token:     "old-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Refresh(context.Background(), "old-token")
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revokedIDs, "rt-old")
	require.Len(t, repo.refreshTokens, 1)
}

func TestAuthServiceRefreshRejectsExpired(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: 7},
		storedToken: &models.RefreshToken{
			ID:        "rt-old",
			UserID:    7,
			Token:     "old-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		},
	}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Refresh(context.Background(), "old-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedIDs)
}

func TestAuthServiceLogoutRevokesAllSessions(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	require.NoError(t, svc.Logout(context.Background(), 7))
	assert.Equal(t, []int64{7}, repo.revokedUsers)
}

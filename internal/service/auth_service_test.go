package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

// mockUserRepository реализует UserRepository для тестов.
type mockUserRepository struct {
	usersByID map[string]*models.User
	sessions  map[string]*models.Session
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByID: make(map[string]*models.User),
		sessions:  make(map[string]*models.Session),
	}
}

func (m *mockUserRepository) Create(_ context.Context, user *models.User) error {
	if user.Email != nil {
		if _, err := m.GetByEmail(context.Background(), *user.Email); err == nil {
			return common.ErrAlreadyExists
		}
	}
	cp := *user
	m.usersByID[user.ID] = &cp
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.usersByID {
		if user.Email != nil && strings.EqualFold(*user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, common.ErrNotFound)
}

func (m *mockUserRepository) UpdateLastLoginAt(_ context.Context, id string, at time.Time) error {
	if user, ok := m.usersByID[id]; ok {
		user.LastLoginAt = &at
		return nil
	}
	return common.ErrNotFound
}

func (m *mockUserRepository) List(_ context.Context, status string) ([]models.User, error) {
	var users []models.User
	for _, user := range m.usersByID {
		if status == "" || user.Status == status {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (m *mockUserRepository) SetStatus(_ context.Context, id, status string, reason *string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return common.ErrNotFound
	}
	user.Status = status
	user.BanReason = reason
	return nil
}

func (m *mockUserRepository) CreateSession(_ context.Context, session *models.Session) error {
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockUserRepository) GetSession(_ context.Context, refreshToken string) (*models.Session, error) {
	if s, ok := m.sessions[refreshToken]; ok {
		return s, nil
	}
	return nil, common.ErrNotFound
}

func (m *mockUserRepository) DeleteSession(_ context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockUserRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	n := 0
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

type staticSettings struct {
	settings models.Settings
	err      error
}

func (s *staticSettings) GetSettings(context.Context) (*models.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := s.settings
	return &cp, nil
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
}

func newTestAuthService() (*AuthService, *mockUserRepository, *staticSettings) {
	repo := newMockUserRepository()
	settings := &staticSettings{settings: models.DefaultSettings()}
	return NewAuthService(repo, settings, newTestTokenManager()), repo, settings
}

func TestAuthService_Login_MockAccountIsStable(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	first, err := svc.Login(ctx, LoginInput{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, ids.HasPrefix(first.User.ID, models.PrefixUser))
	assert.Equal(t, models.RoleUser, first.Role)
	assert.NotEmpty(t, first.TokenPair.AccessToken)

	second, err := svc.Login(ctx, LoginInput{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, repo.usersByID, 1)
	assert.Len(t, repo.sessions, 2)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	cases := []LoginInput{
		{Email: "test@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "password123"},
		{Email: "not-an-email", Password: "password123"},
		{Email: "Test@Example.com", Password: "password123"},
		{Email: " test@example.com ", Password: "password123"},
	}
	for _, in := range cases {
		_, err := svc.Login(ctx, in)
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials, in.Email)
		assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Email: "New@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", reg.User.EmailValue())

	_, err = svc.Register(ctx, RegisterInput{Email: "new@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)

	_, err = svc.Register(ctx, RegisterInput{Email: "short@example.com", Password: "12345"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "admin@roastblame.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)

	login, err := svc.Login(ctx, LoginInput{Email: "new@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "new@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_BannedUser(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Email: MockUserEmail, Password: MockUserPassword})
	require.NoError(t, err)
	reason := "spam"
	require.NoError(t, repo.SetStatus(ctx, res.User.ID, models.UserStatusBanned, &reason))

	_, err = svc.Login(ctx, LoginInput{Email: MockUserEmail, Password: MockUserPassword})
	assert.ErrorIs(t, err, apperror.ErrUserBanned)
}

func TestAuthService_LoginAsAdmin(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	admin, err := svc.LoginAsAdmin(ctx, LoginInput{Email: "admin@roastblame.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, ids.HasPrefix(admin.User.ID, models.PrefixAdmin))

	actor, err := svc.tokenManager.ParseAccess(admin.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())

	mod, err := svc.LoginAsAdmin(ctx, LoginInput{Email: "moderator@roastblame.com", Password: "mod123"})
	require.NoError(t, err)
	assert.NotEqual(t, admin.User.ID, mod.User.ID)

	rejected := []LoginInput{
		{Email: "admin@roastblame.com", Password: "mod123"},
		{Email: "moderator@roastblame.com", Password: "admin123"},
		{Email: "test@example.com", Password: "password123"},
		{Email: "ADMIN@RoastBlame.com", Password: "admin123"},
		{Email: " admin@roastblame.com ", Password: "admin123"},
		{Email: "moderator@roastblame.com", Password: "MOD123"},
		{Email: "", Password: ""},
	}
	for _, in := range rejected {
		_, err := svc.LoginAsAdmin(ctx, in)
		assert.ErrorIs(t, err, apperror.ErrInvalidAdminCredential, in.Email)
	}
}

func TestAuthService_LoginAnonymously(t *testing.T) {
	svc, _, settings := newTestAuthService()
	ctx := context.Background()

	res, err := svc.LoginAnonymously(ctx)
	require.NoError(t, err)
	assert.True(t, res.User.IsAnonymous)
	assert.Nil(t, res.User.Email)
	assert.Equal(t, models.RoleAnonymous, res.Role)

	settings.settings.AllowAnonymous = false
	_, err = svc.LoginAnonymously(ctx)
	assert.ErrorIs(t, err, apperror.ErrAnonymousDisabled)
}

func TestAuthService_RefreshKeepsRoleAndRotates(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	admin, err := svc.LoginAsAdmin(ctx, LoginInput{Email: "admin@roastblame.com", Password: "admin123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, admin.TokenPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, refreshed.Role)
	assert.NotContains(t, repo.sessions, admin.TokenPair.RefreshToken)

	_, err = svc.Refresh(ctx, admin.TokenPair.RefreshToken)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestAuthService_LogoutDropsSession(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Email: MockUserEmail, Password: MockUserPassword})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.TokenPair.RefreshToken))
	assert.Empty(t, repo.sessions)
	require.NoError(t, svc.Logout(ctx, res.TokenPair.RefreshToken))

	_, err = svc.Refresh(ctx, res.TokenPair.RefreshToken)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	assert.NoError(t, svc.ResetPassword(context.Background(), "anyone@example.com"))
	assert.True(t, apperror.IsValidation(svc.ResetPassword(context.Background(), "nope")))
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("other", "other", time.Minute, time.Minute)

	pair, _, err := other.GeneratePair(&models.User{ID: "user_1"}, models.RoleUser)
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
	_, err = tm.ParseRefresh(pair.RefreshToken)
	assert.Error(t, err)
}

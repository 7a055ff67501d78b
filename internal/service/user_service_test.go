package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

type fakeUserRepo struct {
	users      map[string]*models.User
	revoked    []string
	lastFilter models.UserFilter
	settings   map[string]models.UserSettings
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User), settings: make(map[string]models.UserSettings)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (f *fakeUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	f.lastFilter = filter
	var result []models.User
	for _, u := range f.users {
		if u.Deleted() {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		result = append(result, *u)
	}
	return result, len(result), nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) live(id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok || u.Deleted() {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, err := f.live(id)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) UpdateSettings(_ context.Context, id string, settings models.UserSettings) error {
	u, err := f.live(id)
	if err != nil {
		return err
	}
	u.Settings = settings
	f.settings[id] = settings
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	u, err := f.live(id)
	if err != nil {
		return err
	}
	u.Active = false
	u.DeletedAt = &at
	f.revoked = append(f.revoked, id)
	return nil
}

func (f *fakeUserRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func (f *fakeUserRepo) Activity(_ context.Context, _ string) (*models.UserActivity, error) {
	return &models.UserActivity{Enrollments: 3, PastGrades: 2}, nil
}

func (f *fakeUserRepo) Stats(_ context.Context) (*models.SystemStats, error) {
	return &models.SystemStats{Users: len(f.users), Courses: 4, Enrollments: 7, PastGrades: 9}, nil
}

func sampleUsers() []models.User {
	return []models.User{
		{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin, Active: true, Settings: models.DefaultUserSettings()},
		{ID: "student-1", Email: "ana@example.com", Role: models.RoleStudent, Active: true, Settings: models.DefaultUserSettings()},
		{ID: "student-2", Email: "ben@example.com", Role: models.RoleStudent, Active: true, Settings: models.DefaultUserSettings()},
	}
}

func TestUserServiceListAppliesDefaultsAndRole(t *testing.T) {
	repo := newFakeUserRepo(sampleUsers()...)
	svc := NewUserService(repo, nil, nil)

	users, pagination, err := svc.List(context.Background(), dto.UserQuery{Search: "  ana ", Role: "STUDENT", PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "ana", repo.lastFilter.Search)
	assert.Equal(t, models.RoleStudent, repo.lastFilter.Role)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestUserServiceListRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil, nil)

	_, _, err := svc.List(context.Background(), dto.UserQuery{Role: "TEACHER"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceGetIncludesActivity(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(sampleUsers()...), nil, nil)

	detail, err := svc.Get(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", detail.User.Email)
	assert.Equal(t, 3, detail.Enrollments)
	assert.Equal(t, 2, detail.PastGrades)

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceResetPasswordRevokesSessions(t *testing.T) {
	repo := newFakeUserRepo(sampleUsers()...)
	svc := NewUserService(repo, nil, nil)
	actor := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

	err := svc.ResetPassword(context.Background(), actor, "student-1", dto.ResetPasswordRequest{NewPassword: "new-secret-1"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["student-1"].PasswordHash), []byte("new-secret-1")))
	assert.Equal(t, []string{"student-1"}, repo.revoked)

	err = svc.ResetPassword(context.Background(), actor, "student-1", dto.ResetPasswordRequest{NewPassword: "short"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.ResetPassword(context.Background(), actor, "missing", dto.ResetPasswordRequest{NewPassword: "new-secret-1"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteRefusesSelf(t *testing.T) {
	repo := newFakeUserRepo(sampleUsers()...)
	svc := NewUserService(repo, nil, nil)
	actor := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

	err := svc.Delete(context.Background(), actor, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.users["admin-1"].Deleted())

	require.NoError(t, svc.Delete(context.Background(), actor, "student-2"))
	assert.True(t, repo.users["student-2"].Deleted())
	assert.False(t, repo.users["student-2"].Active)

	err = svc.Delete(context.Background(), actor, "student-2")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteAccountStampsTime(t *testing.T) {
	repo := newFakeUserRepo(sampleUsers()...)
	svc := NewUserService(repo, nil, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.DeleteAccount(context.Background(), "student-1"))
	require.NotNil(t, repo.users["student-1"].DeletedAt)
	assert.Equal(t, fixed, *repo.users["student-1"].DeletedAt)
	assert.Contains(t, repo.revoked, "student-1")
}

func TestUserServiceDeletedAccountCannotLogin(t *testing.T) {
	users := newFakeUserRepo(sampleUsers()...)
	svc := NewUserService(users, nil, nil)
	require.NoError(t, svc.DeleteAccount(context.Background(), "student-1"))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	deleted := *users.users["student-1"]
	deleted.PasswordHash = string(hash)

	authRepo := newMockAuthRepo()
	authRepo.users[deleted.ID] = &deleted
	auth := newTestAuthService(authRepo)

	_, err = auth.Login(context.Background(), models.LoginRequest{Email: deleted.Email, Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateSettingsMergesFields(t *testing.T) {
	repo := newFakeUserRepo(sampleUsers()...)
	svc := NewUserService(repo, nil, nil)
	dark := true
	zone := "Europe/Berlin"
	minutes := 30

	settings, err := svc.UpdateSettings(context.Background(), "student-1", dto.UpdateSettingsRequest{DarkMode: &dark, Timezone: &zone, DefaultReminderMinutes: &minutes})
	require.NoError(t, err)
	assert.True(t, settings.DarkMode)
	assert.Equal(t, "Europe/Berlin", settings.Timezone)
	assert.Equal(t, 30, settings.DefaultReminderMinutes)
	assert.Equal(t, "24h", settings.TimeFormat)
	assert.True(t, settings.Notifications)
	assert.Equal(t, *settings, repo.settings["student-1"])
}

func TestUserServiceUpdateSettingsValidates(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(sampleUsers()...), nil, nil)
	zone := "Mars/Olympus"
	format := "military"
	minutes := 20000

	for _, req := range []dto.UpdateSettingsRequest{{Timezone: &zone}, {TimeFormat: &format}, {DefaultReminderMinutes: &minutes}} {
		_, err := svc.UpdateSettings(context.Background(), "student-1", req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestUserServiceStats(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(sampleUsers()...), nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Users)
	assert.Equal(t, 9, stats.PastGrades)
}

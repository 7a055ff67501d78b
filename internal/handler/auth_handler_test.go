package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

type fakeAuthSrv struct {
	logoutToken string
	logoutUser  string
}

func (f *fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	return &models.TokenResponse{AccessToken: "access", User: &models.UserInfo{Email: req.Email}}, nil
}

func (f *fakeAuthSrv) Login(context.Context, models.LoginRequest) (*models.TokenResponse, error) {
	return nil, appErrors.ErrInvalidCredentials
}

func (f *fakeAuthSrv) RefreshToken(context.Context, models.RefreshTokenRequest) (*models.TokenResponse, error) {
	return &models.TokenResponse{AccessToken: "rotated"}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, refreshToken string, userID string) error {
	f.logoutToken = refreshToken
	f.logoutUser = userID
	return nil
}

func (f *fakeAuthSrv) Me(_ context.Context, userID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID, Role: models.RoleStudent}, nil
}

func TestAuthHandlerRegister(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"ana@example.com","password":"secret123","full_name":"Ana"}`))

	NewAuthHandler(&fakeAuthSrv{}).Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"access"`)
	assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`))

	NewAuthHandler(&fakeAuthSrv{}).Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, rec).Error.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	srv := &fakeAuthSrv{}
	c, rec := newContext(http.MethodPost, "/auth/logout", strings.NewReader(`{"refresh_token":"r1"}`))
	asStudent(c, "u1")

	NewAuthHandler(srv).Logout(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "r1", srv.logoutToken)
	assert.Equal(t, "u1", srv.logoutUser)
}

func TestAuthHandlerMe(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/auth/me", nil)
	asStudent(c, "u1")

	NewAuthHandler(&fakeAuthSrv{}).Me(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)
}

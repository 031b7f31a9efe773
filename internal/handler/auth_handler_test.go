package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhub/roster-api/internal/middleware"
	"github.com/rosterhub/roster-api/internal/models"
	"github.com/rosterhub/roster-api/internal/service"
	"github.com/rosterhub/roster-api/internal/store"
)

type userRepoStub struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	tokens       map[string]*models.RefreshToken
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
	}
}

func (r *userRepoStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := r.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := r.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) Create(_ context.Context, user *models.User) error {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
	return nil
}

func (r *userRepoStub) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (r *userRepoStub) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *userRepoStub) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := r.tokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	for _, stored := range r.tokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

func (r *userRepoStub) RevokeUserRefreshTokens(_ context.Context, _ string) error {
	return nil
}

func newTestAuthHandler() (*AuthHandler, *userRepoStub) {
	repo := newUserRepoStub()
	roster := service.NewRosterService(store.New(), &snapshotterStub{}, nil, nil, nil, nil)
	authSvc := service.NewAuthService(repo, roster, nil, nil, service.AuthConfig{
		AdminPassword:      "changeme",
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "roster-api-test",
	})
	return NewAuthHandler(authSvc), repo
}

func TestAuthHandlerAdminLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewBufferString(`{"password":"changeme"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.AdminLogin(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.RoleAdmin, envelope.Data.User.Role)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Empty(t, envelope.Data.RefreshToken)
}

func TestAuthHandlerAdminLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewBufferString(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.AdminLogin(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerSignupAndLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler()

	signup := `{"name":"Alice Cooper","email":"alice@example.com","password":"secret123"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(signup))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Signup(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.RoleMember, envelope.Data.User.Role)
	assert.NotEmpty(t, envelope.Data.User.MemberID)

	login := `{"email":"alice@example.com","password":"secret123"}`
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(login))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandlerSignupDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTestAuthHandler()
	repo.usersByEmail["alice@example.com"] = &models.User{ID: "u1", Email: "alice@example.com", Active: true}

	signup := `{"name":"Alice Cooper","email":"alice@example.com","password":"secret123"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(signup))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Signup(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandlerLogoutWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Logout(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:   "u1",
		Role:     models.RoleMember,
		Email:    "alice@example.com",
		FullName: "Alice Cooper",
		MemberID: "m1",
	})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "m1", envelope.Data.MemberID)
	assert.Equal(t, models.RoleMember, envelope.Data.Role)
}

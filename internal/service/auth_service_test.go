package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rosterhub/roster-api/internal/models"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
)

type userRepoStub struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	tokens       map[string]*models.RefreshToken
	created      []*models.User
	revoked      []string
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
	}
}

func (r *userRepoStub) addUser(user *models.User) {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
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
	r.created = append(r.created, user)
	r.addUser(user)
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
	r.revoked = append(r.revoked, id)
	for _, stored := range r.tokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

func (r *userRepoStub) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	for _, stored := range r.tokens {
		if stored.UserID == userID {
			stored.Revoked = true
		}
	}
	return nil
}

type memberBinderStub struct {
	members map[string]*models.Member
	calls   int
}

func (b *memberBinderStub) EnsureMember(_ context.Context, name, email string, phone *string) (*models.Member, error) {
	b.calls++
	if b.members == nil {
		b.members = make(map[string]*models.Member)
	}
	if existing, ok := b.members[email]; ok {
		return existing, nil
	}
	member := &models.Member{ID: "m-" + email, Name: name, Email: email, Phone: phone}
	b.members[email] = member
	return member, nil
}

func newTestAuthService(repo *userRepoStub, binder *memberBinderStub) *AuthService {
	return NewAuthService(repo, binder, nil, nil, AuthConfig{
		AdminPassword:      "changeme",
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "roster-api-test",
	})
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestAuthService(newUserRepoStub(), &memberBinderStub{})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAdminLoginIssuesAdminToken(t *testing.T) {
	svc := newTestAuthService(newUserRepoStub(), &memberBinderStub{})

	resp, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "changeme"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Empty(t, resp.RefreshToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, adminUserID, claims.UserID)
}

func TestSignupCreatesAccountAndBindsMember(t *testing.T) {
	repo := newUserRepoStub()
	binder := &memberBinderStub{}
	svc := newTestAuthService(repo, binder)

	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Alice Cooper",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 1, binder.calls)
	assert.Equal(t, models.RoleMember, resp.User.Role)
	assert.Equal(t, "m-alice@example.com", resp.User.MemberID)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "m-alice@example.com", claims.MemberID)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser(&models.User{ID: "u1", Email: "alice@example.com", Active: true})
	svc := newTestAuthService(repo, &memberBinderStub{})

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Alice Cooper",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestLoginVerifiesPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	memberID := "m-1"
	repo := newUserRepoStub()
	repo.addUser(&models.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		FullName:     "Alice Cooper",
		Role:         models.RoleMember,
		MemberID:     &memberID,
		Active:       true,
	})
	svc := newTestAuthService(repo, &memberBinderStub{})

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, memberID, resp.User.MemberID)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newUserRepoStub()
	repo.addUser(&models.User{ID: "u1", Email: "alice@example.com", PasswordHash: string(hash), Active: false})
	svc := newTestAuthService(repo, &memberBinderStub{})

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser(&models.User{ID: "u1", Email: "alice@example.com", Role: models.RoleMember, Active: true})
	repo.tokens["old-token"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	svc := newTestAuthService(repo, &memberBinderStub{})

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revoked, "rt1")
	assert.True(t, repo.tokens["old-token"].Revoked)
}

func TestRefreshTokenRejectsExpired(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser(&models.User{ID: "u1", Active: true})
	repo.tokens["stale"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	svc := newTestAuthService(repo, &memberBinderStub{})

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutIgnoresUnknownToken(t *testing.T) {
	svc := newTestAuthService(newUserRepoStub(), &memberBinderStub{})

	require.NoError(t, svc.Logout(context.Background(), "", "u1"))
	require.NoError(t, svc.Logout(context.Background(), "never-issued", "u1"))
}

func TestLogoutRevokesOwnToken(t *testing.T) {
	repo := newUserRepoStub()
	repo.tokens["tok"] = &models.RefreshToken{ID: "rt1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newTestAuthService(repo, &memberBinderStub{})

	require.NoError(t, svc.Logout(context.Background(), "tok", "u1"))
	assert.True(t, repo.tokens["tok"].Revoked)

	repo.tokens["tok"].Revoked = false
	err := svc.Logout(context.Background(), "tok", "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newTestAuthService(newUserRepoStub(), &memberBinderStub{})

	resp, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "changeme"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

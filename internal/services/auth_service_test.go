package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthService(f *fixture) *AuthService {
	cfg := &config.Config{
		JWTSecret:        testSecret,
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	return NewAuthService(f.db, cfg, f.profiles)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	auth := newAuthService(f)

	resp, err := auth.Register(f.ctx, &dto.RegisterRequest{Email: " Lena@Example.com ", Password: "correct-horse", FullName: "Lena"})
	require.NoError(t, err)
	assert.Equal(t, "lena@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	id, err := identity.FromToken(token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id.ID)
	assert.Equal(t, "lena@example.com", id.Email)

	var profiles int64
	require.NoError(t, f.db.Model(&models.Profile{}).Where("id = ?", resp.User.ID).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)

	_, err = auth.Register(f.ctx, &dto.RegisterRequest{Email: "lena@example.com", Password: "another-pass"})
	requireKind(t, err, ErrEmailTaken, "email_taken")

	_, err = auth.Login(f.ctx, &dto.LoginRequest{Email: "lena@example.com", Password: "wrong-password"})
	requireKind(t, err, ErrInvalidCredentials, "invalid_credentials")

	_, err = auth.Login(f.ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	requireKind(t, err, ErrInvalidCredentials, "invalid_credentials")

	login, err := auth.Login(f.ctx, &dto.LoginRequest{Email: "LENA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	auth := newAuthService(f)

	resp, err := auth.Register(f.ctx, &dto.RegisterRequest{Email: "rot@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(f.ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	_, err = auth.Refresh(f.ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	requireKind(t, err, ErrInvalidToken, "invalid_refresh_token")

	_, err = auth.Refresh(f.ctx, &dto.RefreshRequest{RefreshToken: "garbage"})
	requireKind(t, err, ErrInvalidToken, "invalid_refresh_token")
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	auth := newAuthService(f)

	resp, err := auth.Register(f.ctx, &dto.RegisterRequest{Email: "old@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.RefreshToken{}).Where("1 = 1").
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = auth.Refresh(f.ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	requireKind(t, err, ErrInvalidToken, "")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	auth := newAuthService(f)

	resp, err := auth.Register(f.ctx, &dto.RegisterRequest{Email: "bye@example.com", Password: "password123"})
	require.NoError(t, err)
	caller := &identity.Identity{ID: resp.User.ID, Email: resp.User.Email}

	require.NoError(t, auth.Logout(f.ctx, caller, &dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = auth.Refresh(f.ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	requireKind(t, err, ErrInvalidToken, "")

	err = auth.Logout(f.ctx, nil, &dto.LogoutRequest{RefreshToken: resp.RefreshToken})
	requireKind(t, err, ErrUnauthenticated, "")
}

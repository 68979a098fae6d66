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

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/pkg/config"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

type fakeUserReader struct {
	user          *models.User
	lastLoginAt   *time.Time
	lastLoginUser string
}

func (f *fakeUserReader) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserReader) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserReader) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	f.lastLoginUser = id
	f.lastLoginAt = &at
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "campus-admin"}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		FullName:     "Admin One",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	users := &fakeUserReader{user: activeUser(t)}
	svc := NewAuthService(users, testJWTConfig(), zap.NewNop())

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pw",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, "user-1", result.User.ID)
	assert.Equal(t, "user-1", users.lastLoginUser)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewAuthService(&fakeUserReader{user: activeUser(t)}, testJWTConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownAccountLooksLikeBadPassword(t *testing.T) {
	svc := NewAuthService(&fakeUserReader{}, testJWTConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "anything",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(&fakeUserReader{user: user}, testJWTConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pw",
	})
	assert.ErrorIs(t, err, apperrors.ErrInactiveAccount)
}

func TestRefreshReissuesForActiveAccount(t *testing.T) {
	svc := NewAuthService(&fakeUserReader{user: activeUser(t)}, testJWTConfig(), zap.NewNop())

	result, err := svc.Refresh(context.Background(), &models.JWTClaims{UserID: "user-1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestRefreshRejectsDeactivatedAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(&fakeUserReader{user: user}, testJWTConfig(), zap.NewNop())

	_, err := svc.Refresh(context.Background(), &models.JWTClaims{UserID: "user-1"})
	assert.ErrorIs(t, err, apperrors.ErrInactiveAccount)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	users := &fakeUserReader{user: activeUser(t)}
	svc := NewAuthService(users, testJWTConfig(), zap.NewNop())

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pw",
	})
	require.NoError(t, err)

	other := NewAuthService(users, config.JWTConfig{Secret: "other-secret", Expiration: time.Hour}, zap.NewNop())
	_, err = other.ValidateToken(result.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

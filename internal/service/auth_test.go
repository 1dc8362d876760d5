package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daffodils/florist-api/internal/config"
	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

var testJWTConfig = config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour}

func newAuthTestEnv(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewAuthService(store.Admins(), testJWTConfig, testLogger()), store
}

func seedAdmin(t *testing.T, store *repository.MemoryStore, username, email, password string, active bool) *model.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &model.Admin{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		Role:        "admin",
		Permissions: model.FullPermissions(),
		IsActive:    active,
	}
	require.NoError(t, store.CreateAdmin(context.Background(), admin))
	return admin
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	svc, store := newAuthTestEnv(t)
	seedAdmin(t, store, "fiona", "fiona@daffodils.local", "petals123", true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "fiona@daffodils.local",
		Password: "petals123",
	})
	require.NoError(t, err)
	assert.Equal(t, "fiona", resp.Admin.Username)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.Admin.LastLogin)

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (any, error) {
		return []byte(testJWTConfig.Secret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "fiona@daffodils.local", claims["email"])
	assert.NotEmpty(t, claims["permissions"])
}

func TestAuthService_Login_ByUsername(t *testing.T) {
	svc, store := newAuthTestEnv(t)
	seedAdmin(t, store, "hamish", "hamish@daffodils.local", "stems456", true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "hamish",
		Password: "stems456",
	})
	require.NoError(t, err)
	assert.Equal(t, "hamish", resp.Admin.Username)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, store := newAuthTestEnv(t)
	seedAdmin(t, store, "fiona", "fiona@daffodils.local", "petals123", true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "fiona@daffodils.local",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownAdmin(t *testing.T) {
	svc, _ := newAuthTestEnv(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@daffodils.local",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_DeactivatedAdmin(t *testing.T) {
	svc, store := newAuthTestEnv(t)
	seedAdmin(t, store, "former", "former@daffodils.local", "gone1234", false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "former@daffodils.local",
		Password: "gone1234",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_MissingIdentifier(t *testing.T) {
	svc, _ := newAuthTestEnv(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Password: "whatever"})
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestAuthService_EnsureDefaultAdmin(t *testing.T) {
	svc, store := newAuthTestEnv(t)
	cfg := config.AdminConfig{Email: "admin@daffodils.local", Username: "admin", Password: "changeme123"}

	require.NoError(t, svc.EnsureDefaultAdmin(context.Background(), cfg))

	admin, err := store.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "super-admin", admin.Role)
	assert.True(t, admin.Permissions.Allows(model.ResourceOrders, model.ActionDelete))

	// Idempotent: a second run does not create another account.
	require.NoError(t, svc.EnsureDefaultAdmin(context.Background(), cfg))
	count, err := store.CountAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

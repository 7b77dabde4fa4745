package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goldlab/assay-api/internal/config"
	"github.com/goldlab/assay-api/internal/domain"
)

func TestAuthService_EnsureAdminAndLogin(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users)
	ctx := context.Background()

	conf := &config.AdminConfig{Username: "admin", Password: "admin1234", Name: "Admin"}
	require.NoError(t, svc.EnsureAdmin(ctx, conf))
	require.NoError(t, svc.EnsureAdmin(ctx, conf))
	require.Len(t, users.users, 1)

	admin := users.users[1]
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NotEqual(t, "admin1234", admin.Password)

	logged, err := svc.Login(ctx, "admin", "admin1234")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, logged.ID)

	_, err = svc.Login(ctx, "admin", "wrong-pass1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nobody", "admin1234")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Login_UnknownUserRunsBcrypt(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, &config.AdminConfig{Username: "admin", Password: "admin1234"}))

	var hashes [][]byte
	orig := comparePassword
	comparePassword = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return orig(hash, password)
	}
	t.Cleanup(func() { comparePassword = orig })

	_, err := svc.Login(ctx, "nobody", "admin1234")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Login(ctx, "admin", "wrong-pass1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.Len(t, hashes, 2)
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	adminCost, err := bcrypt.Cost(hashes[1])
	require.NoError(t, err)
	assert.Equal(t, adminCost, cost)
}

func TestAuthService_EnsureAdmin_MissingCredentials(t *testing.T) {
	svc := NewAuthService(newFakeUsers())

	assert.Error(t, svc.EnsureAdmin(context.Background(), &config.AdminConfig{}))
	assert.Error(t, svc.EnsureAdmin(context.Background(), nil))
}

func TestUserService(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, domain.User{Username: "ravi", Password: "secret123", Role: domain.RoleStaff})
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", created.Password)

	_, err = svc.CreateUser(ctx, domain.User{Username: "ravi", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	assert.ErrorIs(t, svc.DeleteUser(ctx, created.ID, created.ID), ErrDeleteSelf)
	require.NoError(t, svc.DeleteUser(ctx, 99, created.ID))

	_, err = svc.GetUser(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

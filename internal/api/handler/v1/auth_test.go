package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/api/middleware"
	"github.com/goldlab/assay-api/internal/config"
	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/pkg/jwthelper"
	"github.com/goldlab/assay-api/internal/service"
)

const testSigningKey = "handler-test-key"

type fakeAuthService struct{}

func (fakeAuthService) Login(_ context.Context, username, password string) (domain.User, error) {
	switch {
	case username != "admin":
		return domain.User{}, service.ErrUserNotFound
	case password != "admin1234":
		return domain.User{}, service.ErrWrongPassword
	}
	return domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin}, nil
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(&config.APIConfig{JWTSigningKey: testSigningKey, JWTTTL: time.Hour}, fakeAuthService{})
	r := newTestRouter()
	r.POST("/auth/login", h.HandleLogin)

	w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "admin1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin", body.User.Username)

	claims, err := jwthelper.ParseToken([]byte(testSigningKey), body.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	for _, creds := range []gin.H{
		{"username": "admin", "password": "nope"},
		{"username": "ghost", "password": "admin1234"},
	} {
		w = doJSON(r, http.MethodPost, "/auth/login", creds)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "wrong username or password", errorMessage(t, w))
	}

	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeUserService struct {
	users map[uint]domain.User
}

func (f *fakeUserService) GetUser(_ context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserService) ListUsers(context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserService) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return domain.User{}, service.ErrUsernameExists
		}
	}
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserService) DeleteUser(_ context.Context, actorID, id uint) error {
	if actorID == id {
		return service.ErrDeleteSelf
	}
	if _, ok := f.users[id]; !ok {
		return service.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func TestUserHandler(t *testing.T) {
	svc := &fakeUserService{users: map[uint]domain.User{1: {ID: 1, Username: "admin", Role: domain.RoleAdmin}}}
	h := NewUserHandler(svc)

	r := newTestRouter()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserID, uint(1))
		ctx.Next()
	})
	r.GET("/users/me", h.HandleGetMe)
	r.POST("/users", h.HandleCreateUser)
	r.DELETE("/users/:userID", h.HandleDeleteUser)

	w := doJSON(r, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"admin"`)
	assert.NotContains(t, w.Body.String(), "password")

	newUser := gin.H{"username": "ravi", "password": "counter42", "name": "Ravi", "role": "staff"}
	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/users", newUser).Code)
	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/users", newUser).Code)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodDelete, "/users/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/users/9", nil).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/users/2", nil).Code)
}

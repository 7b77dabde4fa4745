package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/pkg/jwthelper"
)

const testKey = "test-signing-key"

type fakeUsers map[uint]domain.User

func (f fakeUsers) GetUser(_ context.Context, id uint) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return domain.User{}, assert.AnError
	}
	return u, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(ctx *gin.Context) {
		id, _ := UserID(ctx)
		ctx.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/", handlers...)

	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestVerifyJWT(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Username: "counter", Role: domain.RoleStaff}}
	r := newRouter(NewAuthenticator(testKey, users).VerifyJWT())

	valid, err := jwthelper.GenerateToken([]byte(testKey), 7, time.Hour)
	require.NoError(t, err)
	foreign, err := jwthelper.GenerateToken([]byte("other"), 7, time.Hour)
	require.NoError(t, err)
	unknownUser, err := jwthelper.GenerateToken([]byte(testKey), 42, time.Hour)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, foreign).Code)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, unknownUser).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(r, valid)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7}`, w.Body.String())
	})
}

func TestVerifyJWT_DeletedUser(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Role: domain.RoleStaff}}
	r := newRouter(NewAuthenticator(testKey, users).VerifyJWT())

	token, err := jwthelper.GenerateToken([]byte(testKey), 7, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, do(r, token).Code)

	delete(users, 7)
	assert.Equal(t, http.StatusUnauthorized, do(r, token).Code)
}

func TestVerifyJWT_StoresUser(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Username: "counter", Role: domain.RoleStaff}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", NewAuthenticator(testKey, users).VerifyJWT(), func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		require.True(t, ok)
		ctx.JSON(http.StatusOK, gin.H{"username": user.Username})
	})

	token, err := jwthelper.GenerateToken([]byte(testKey), 7, time.Hour)
	require.NoError(t, err)

	w := do(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"counter"}`, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	users := fakeUsers{
		1: {ID: 1, Role: domain.RoleAdmin},
		2: {ID: 2, Role: domain.RoleStaff},
	}
	r := newRouter(NewAuthenticator(testKey, users).VerifyJWT(), RequireAdmin())

	token := func(id uint) string {
		s, err := jwthelper.GenerateToken([]byte(testKey), id, time.Hour)
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, http.StatusOK, do(r, token(1)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, token(2)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, token(3)).Code)

	t.Run("without VerifyJWT", func(t *testing.T) {
		bare := newRouter(RequireAdmin())
		assert.Equal(t, http.StatusUnauthorized, do(bare, token(1)).Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3)
	r := newRouter(rl.Handler())

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(r, "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, "").Code)

	rl.Cleanup()
	assert.Len(t, rl.limiters, 1)
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/pkg/jwthelper"
)

const (
	// ContextUserID is the gin context key holding the authenticated user id.
	ContextUserID = "userID"
	// ContextUser holds the user loaded by VerifyJWT.
	ContextUser = "user"
)

var errMissingToken = errors.New("missing bearer token")

type UserLookup interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type Authenticator struct {
	key   []byte
	users UserLookup
}

func NewAuthenticator(key string, users UserLookup) *Authenticator {
	return &Authenticator{
		key:   []byte(key),
		users: users,
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	// Browsers cannot set headers on websocket upgrades.
	if ctx.IsWebsocket() {
		return ctx.Query("token")
	}

	return ""
}

// VerifyJWT rejects requests without a valid token or whose user no longer
// exists. It stores the user id under ContextUserID and the user under
// ContextUser.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := bearerToken(ctx)
		if raw == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		user, err := a.users.GetUser(ctx.Request.Context(), userID)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(fmt.Errorf("user %d: %w", userID, err)))
			return
		}

		ctx.Set(ContextUserID, userID)
		ctx.Set(ContextUser, user)
		ctx.Next()
	}
}

func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)

	return id, ok
}

func CurrentUser(ctx *gin.Context) (domain.User, bool) {
	v, ok := ctx.Get(ContextUser)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)

	return user, ok
}

// RequireAdmin lets only admin users through. It must run after VerifyJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}
		if !user.IsAdmin() {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))
			return
		}

		ctx.Next()
	}
}

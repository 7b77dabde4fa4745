package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/request"
	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/api/middleware"
	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	DeleteUser(ctx context.Context, actorID, id uint) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	if user, ok := middleware.CurrentUser(ctx); ok {
		return user, nil
	}

	userID, ok := middleware.UserID(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("not signed in"))
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(err)
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("uSvc.GetUser -> %w", err))
	}

	return user, nil
}

// HandleGetMe godoc
// @Summary      Get the signed in user
// @Tags         users
// @Produce      json
// @Success      200      {object}   domain.User
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200      {array}    domain.User
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.svc.ListUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleCreateUser godoc
// @Summary      Create a staff or admin user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateUserRequest true "request body"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users [post]
// @Security     BearerAuth
func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.CreateUser(ctx.Request.Context(), domain.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrUsernameExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateUser -> h.svc.CreateUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleDeleteUser godoc
// @Summary      Delete a user
// @Tags         users
// @Param        userID   path      int  true  "User ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID} [delete]
// @Security     BearerAuth
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	actor, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteUser(ctx.Request.Context(), actor.ID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrDeleteSelf):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrDeleteSelf))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "id", userID))
		default:
			err = fmt.Errorf("v1.HandleDeleteUser -> h.svc.DeleteUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

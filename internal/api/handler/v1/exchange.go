package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/request"
	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/service"
)

type ExchangeService interface {
	CreateExchange(ctx context.Context, in service.ExchangeInput) (domain.PureExchange, error)
	GetExchange(ctx context.Context, tokenNo string) (domain.PureExchange, error)
	ListExchanges(ctx context.Context, filter domain.ExchangeFilter) (domain.PageResult[domain.PureExchange], error)
	UpdateExchange(ctx context.Context, in service.ExchangeInput) (domain.PureExchange, error)
	DeleteExchange(ctx context.Context, tokenNo string) error
}

type ExchangeHandler struct {
	svc ExchangeService
	loc *time.Location
}

func NewExchangeHandler(svc ExchangeService, loc *time.Location) *ExchangeHandler {
	return &ExchangeHandler{
		svc: svc,
		loc: loc,
	}
}

func renderExchangeErr(ctx *gin.Context, op string, tokenNo string, err error) {
	switch {
	case errors.Is(err, service.ErrExchangeNotFound):
		response.RenderErr(ctx, response.ErrNotFound("pure exchange", "token_no", tokenNo))
	case errors.Is(err, service.ErrTokenNotFound):
		response.RenderErr(ctx, response.ErrNotFound("token", "token_no", tokenNo))
	case errors.Is(err, service.ErrExchangeExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrExchangeExists))
	case errors.Is(err, service.ErrWeightBelowDeduction),
		errors.Is(err, service.ErrExGoldUnknown),
		errors.Is(err, service.ErrPercentageRange):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

// HandleListExchanges godoc
// @Summary      List pure exchanges
// @Tags         pure-exchange
// @Produce      json
// @Param        date       query     string  false  "YYYY-MM-DD"
// @Param        from       query     string  false  "YYYY-MM-DD"
// @Param        to         query     string  false  "YYYY-MM-DD"
// @Param        page       query     int     false  "page number"
// @Param        page_size  query     int     false  "page size"
// @Success      200      {object}   domain.PageResult[domain.PureExchange]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /pure-exchange [get]
// @Security     BearerAuth
func (h *ExchangeHandler) HandleListExchanges(ctx *gin.Context) {
	period, err := optionalPeriod(ctx, shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	page, err := parsePage(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ListExchanges(ctx.Request.Context(), domain.ExchangeFilter{
		From: period.From,
		To:   period.To,
		Page: page,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListExchanges -> h.svc.ListExchanges -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetExchange godoc
// @Summary      Get a pure exchange
// @Tags         pure-exchange
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Success      200      {object}   domain.PureExchange
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /pure-exchange/{tokenNo} [get]
// @Security     BearerAuth
func (h *ExchangeHandler) HandleGetExchange(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	ex, err := h.svc.GetExchange(ctx.Request.Context(), tokenNo)
	if err != nil {
		renderExchangeErr(ctx, "v1.HandleGetExchange -> h.svc.GetExchange", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, ex)
}

// HandleCreateExchange godoc
// @Summary      Record a pure exchange
// @Description  ex_weight = (weight - deduction) * ex_gold / 100. weight defaults to the token weight, ex_gold to the skin test gold.
// @Tags         pure-exchange
// @Accept       json
// @Produce      json
// @Param        request   body      request.ExchangeRequest true "request body"
// @Success      201      {object}   domain.PureExchange
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /pure-exchange [post]
// @Security     BearerAuth
func (h *ExchangeHandler) HandleCreateExchange(ctx *gin.Context) {
	var req request.ExchangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.ValidateCreate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateExchange(ctx.Request.Context(), service.ExchangeInput{
		TokenNo: req.TokenNo,
		Weight:  req.Weight,
		ExGold:  req.ExGold,
		Remarks: req.Remarks,
	})
	if err != nil {
		renderExchangeErr(ctx, "v1.HandleCreateExchange -> h.svc.CreateExchange", req.TokenNo, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateExchange godoc
// @Summary      Update a pure exchange
// @Description  Omitted weight or ex_gold keep their stored values. ex_weight is recomputed.
// @Tags         pure-exchange
// @Accept       json
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Param        request   body      request.ExchangeRequest true "request body"
// @Success      200      {object}   domain.PureExchange
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /pure-exchange/{tokenNo} [put]
// @Security     BearerAuth
func (h *ExchangeHandler) HandleUpdateExchange(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	var req request.ExchangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateExchange(ctx.Request.Context(), service.ExchangeInput{
		TokenNo: tokenNo,
		Weight:  req.Weight,
		ExGold:  req.ExGold,
		Remarks: req.Remarks,
	})
	if err != nil {
		renderExchangeErr(ctx, "v1.HandleUpdateExchange -> h.svc.UpdateExchange", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteExchange godoc
// @Summary      Delete a pure exchange
// @Tags         pure-exchange
// @Param        tokenNo  path      string  true  "Token number"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /pure-exchange/{tokenNo} [delete]
// @Security     BearerAuth
func (h *ExchangeHandler) HandleDeleteExchange(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	if err := h.svc.DeleteExchange(ctx.Request.Context(), tokenNo); err != nil {
		renderExchangeErr(ctx, "v1.HandleDeleteExchange -> h.svc.DeleteExchange", tokenNo, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

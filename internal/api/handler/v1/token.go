package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/request"
	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/report"
	"github.com/goldlab/assay-api/internal/service"
)

type TokenService interface {
	NextTokenNo(ctx context.Context) (string, error)
	CreateToken(ctx context.Context, token domain.Token) (domain.Token, error)
	GetToken(ctx context.Context, tokenNo string) (domain.Token, error)
	ListTokens(ctx context.Context, filter domain.TokenFilter) (domain.PageResult[domain.Token], error)
	ExportTokens(ctx context.Context, period domain.Period) ([]domain.Token, error)
	UpdateToken(ctx context.Context, token domain.Token) (domain.Token, error)
	SetPaid(ctx context.Context, tokenNo string, paid bool) (domain.Token, error)
	DeleteToken(ctx context.Context, tokenNo string) error
}

type ReceiptRenderer interface {
	Receipt(w io.Writer, token domain.Token) error
}

type TokenHandler struct {
	svc      TokenService
	renderer ReceiptRenderer
	loc      *time.Location
}

func NewTokenHandler(svc TokenService, renderer ReceiptRenderer, loc *time.Location) *TokenHandler {
	return &TokenHandler{
		svc:      svc,
		renderer: renderer,
		loc:      loc,
	}
}

func renderTokenErr(ctx *gin.Context, op string, tokenNo string, err error) {
	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		response.RenderErr(ctx, response.ErrNotFound("token", "token_no", tokenNo))
	case errors.Is(err, service.ErrEntryNotFound):
		response.RenderErr(ctx, response.ErrNotFound("entry", "code", ctx.GetString("code")))
	case errors.Is(err, service.ErrTokenExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrTokenExists))
	case errors.Is(err, service.ErrTokenInUse):
		response.RenderErr(ctx, response.ErrConflict(service.ErrTokenInUse))
	case errors.Is(err, service.ErrTokensExhausted):
		response.RenderErr(ctx, response.ErrConflict(service.ErrTokensExhausted))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func (h *TokenHandler) bindToken(ctx *gin.Context) (domain.Token, bool) {
	var req request.TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Token{}, false
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Token{}, false
	}

	at, err := issuedAt(req.Date, req.Time, h.loc)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Token{}, false
	}

	ctx.Set("code", service.NormalizeCode(req.Code))

	return domain.Token{
		IssuedAt: at,
		Code:     req.Code,
		Test:     domain.TestType(req.Test),
		Weight:   req.Weight,
		Sample:   req.Sample,
		Amount:   req.Amount,
		IsPaid:   req.IsPaid,
	}, true
}

// HandleListTokens godoc
// @Summary      List tokens
// @Tags         tokens
// @Produce      json
// @Param        date       query     string  false  "YYYY-MM-DD"
// @Param        from       query     string  false  "YYYY-MM-DD"
// @Param        to         query     string  false  "YYYY-MM-DD"
// @Param        code       query     string  false  "entry code"
// @Param        paid       query     bool    false  "paid filter"
// @Param        page       query     int     false  "page number"
// @Param        page_size  query     int     false  "page size"
// @Success      200      {object}   domain.PageResult[domain.Token]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens [get]
// @Security     BearerAuth
func (h *TokenHandler) HandleListTokens(ctx *gin.Context) {
	period, err := optionalPeriod(ctx, shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	paid, err := queryBool(ctx, "paid")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	page, err := parsePage(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ListTokens(ctx.Request.Context(), domain.TokenFilter{
		From:   period.From,
		To:     period.To,
		Code:   ctx.Query("code"),
		IsPaid: paid,
		Page:   page,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListTokens -> h.svc.ListTokens -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleNextTokenNo godoc
// @Summary      Preview the next token number
// @Tags         tokens
// @Produce      json
// @Success      200      {object}   map[string]string
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/next [get]
// @Security     BearerAuth
func (h *TokenHandler) HandleNextTokenNo(ctx *gin.Context) {
	tokenNo, err := h.svc.NextTokenNo(ctx.Request.Context())
	if err != nil {
		renderTokenErr(ctx, "v1.HandleNextTokenNo -> h.svc.NextTokenNo", "", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token_no": tokenNo})
}

// HandleGetToken godoc
// @Summary      Get a token
// @Tags         tokens
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Success      200      {object}   domain.Token
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/{tokenNo} [get]
// @Security     BearerAuth
func (h *TokenHandler) HandleGetToken(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	token, err := h.svc.GetToken(ctx.Request.Context(), tokenNo)
	if err != nil {
		renderTokenErr(ctx, "v1.HandleGetToken -> h.svc.GetToken", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, token)
}

// HandleCreateToken godoc
// @Summary      Issue a token
// @Description  Draws the next token number. Date and time default to now.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request   body      request.TokenRequest true "request body"
// @Success      201      {object}   domain.Token
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens [post]
// @Security     BearerAuth
func (h *TokenHandler) HandleCreateToken(ctx *gin.Context) {
	token, ok := h.bindToken(ctx)
	if !ok {
		return
	}

	created, err := h.svc.CreateToken(ctx.Request.Context(), token)
	if err != nil {
		renderTokenErr(ctx, "v1.HandleCreateToken -> h.svc.CreateToken", "", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateToken godoc
// @Summary      Update a token
// @Description  Date and time keep their stored value when omitted.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Param        request   body      request.TokenRequest true "request body"
// @Success      200      {object}   domain.Token
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/{tokenNo} [put]
// @Security     BearerAuth
func (h *TokenHandler) HandleUpdateToken(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	token, ok := h.bindToken(ctx)
	if !ok {
		return
	}
	token.TokenNo = tokenNo

	updated, err := h.svc.UpdateToken(ctx.Request.Context(), token)
	if err != nil {
		renderTokenErr(ctx, "v1.HandleUpdateToken -> h.svc.UpdateToken", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleSetPaid godoc
// @Summary      Mark a token paid or unpaid
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Param        request   body      request.SetPaidRequest true "request body"
// @Success      200      {object}   domain.Token
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/{tokenNo}/paid [patch]
// @Security     BearerAuth
func (h *TokenHandler) HandleSetPaid(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	var req request.SetPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.SetPaid(ctx.Request.Context(), tokenNo, *req.IsPaid)
	if err != nil {
		renderTokenErr(ctx, "v1.HandleSetPaid -> h.svc.SetPaid", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteToken godoc
// @Summary      Delete a token
// @Tags         tokens
// @Param        tokenNo  path      string  true  "Token number"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/{tokenNo} [delete]
// @Security     BearerAuth
func (h *TokenHandler) HandleDeleteToken(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	if err := h.svc.DeleteToken(ctx.Request.Context(), tokenNo); err != nil {
		renderTokenErr(ctx, "v1.HandleDeleteToken -> h.svc.DeleteToken", tokenNo, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetReceipt godoc
// @Summary      Printable token receipt
// @Tags         tokens
// @Produce      html
// @Param        tokenNo  path      string  true  "Token number"
// @Success      200      {string}   string
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/{tokenNo}/receipt [get]
// @Security     BearerAuth
func (h *TokenHandler) HandleGetReceipt(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	token, err := h.svc.GetToken(ctx.Request.Context(), tokenNo)
	if err != nil {
		renderTokenErr(ctx, "v1.HandleGetReceipt -> h.svc.GetToken", tokenNo, err)
		return
	}

	renderDocument(ctx, "v1.HandleGetReceipt -> h.renderer.Receipt", htmlContentType, "", func(w io.Writer) error {
		return h.renderer.Receipt(w, token)
	})
}

// HandleExportTokens godoc
// @Summary      Export tokens to Excel
// @Tags         tokens
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from     query     string  false  "YYYY-MM-DD, default today"
// @Param        to       query     string  false  "YYYY-MM-DD, default today"
// @Success      200      {file}     file
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/export [get]
// @Security     BearerAuth
func (h *TokenHandler) HandleExportTokens(ctx *gin.Context) {
	period, err := queryPeriod(ctx, shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tokens, err := h.svc.ExportTokens(ctx.Request.Context(), period)
	if err != nil {
		err = fmt.Errorf("v1.HandleExportTokens -> h.svc.ExportTokens -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	fileName := fmt.Sprintf("tokens_%s_%s.xlsx", period.From.Format("20060102"), period.LastDay().Format("20060102"))
	renderXLSX(ctx, "v1.HandleExportTokens -> report.WriteTokens", fileName, func(w io.Writer) error {
		return report.WriteTokens(w, tokens)
	})
}

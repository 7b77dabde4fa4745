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

type EntryService interface {
	CreateEntry(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	GetEntry(ctx context.Context, code string) (domain.Entry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) (domain.PageResult[domain.Entry], error)
	UpdateEntry(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	DeleteEntry(ctx context.Context, code string) error
	Statement(ctx context.Context, code string, period domain.Period) (domain.Statement, error)
}

type StatementRenderer interface {
	Statement(w io.Writer, st domain.Statement) error
}

type EntryHandler struct {
	svc      EntryService
	renderer StatementRenderer
	loc      *time.Location
}

func NewEntryHandler(svc EntryService, renderer StatementRenderer, loc *time.Location) *EntryHandler {
	return &EntryHandler{
		svc:      svc,
		renderer: renderer,
		loc:      loc,
	}
}

func renderEntryErr(ctx *gin.Context, op string, code string, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.RenderErr(ctx, response.ErrNotFound("entry", "code", code))
	case errors.Is(err, service.ErrEntryCodeExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrEntryCodeExists))
	case errors.Is(err, service.ErrEntryPhoneExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrEntryPhoneExists))
	case errors.Is(err, service.ErrEntryInUse):
		response.RenderErr(ctx, response.ErrConflict(service.ErrEntryInUse))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

// HandleListEntries godoc
// @Summary      List entries
// @Description  Newest first. q matches code, name or phone.
// @Tags         entries
// @Produce      json
// @Param        q          query     string  false  "search text"
// @Param        page       query     int     false  "page number"
// @Param        page_size  query     int     false  "page size"
// @Success      200      {object}   domain.PageResult[domain.Entry]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /entries [get]
// @Security     BearerAuth
func (h *EntryHandler) HandleListEntries(ctx *gin.Context) {
	page, err := parsePage(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ListEntries(ctx.Request.Context(), domain.EntryFilter{
		Query: ctx.Query("q"),
		Page:  page,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListEntries -> h.svc.ListEntries -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetEntry godoc
// @Summary      Get an entry
// @Tags         entries
// @Produce      json
// @Param        code     path      string  true  "Entry code"
// @Success      200      {object}   domain.Entry
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /entries/{code} [get]
// @Security     BearerAuth
func (h *EntryHandler) HandleGetEntry(ctx *gin.Context) {
	code := ctx.Param("code")

	entry, err := h.svc.GetEntry(ctx.Request.Context(), code)
	if err != nil {
		renderEntryErr(ctx, "v1.HandleGetEntry -> h.svc.GetEntry", code, err)
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// HandleCreateEntry godoc
// @Summary      Create an entry
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateEntryRequest true "request body"
// @Success      201      {object}   domain.Entry
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /entries [post]
// @Security     BearerAuth
func (h *EntryHandler) HandleCreateEntry(ctx *gin.Context) {
	var req request.CreateEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.CreateEntry(ctx.Request.Context(), domain.Entry{
		Code:  req.Code,
		Name:  req.Name,
		Phone: request.NormalizePhone(req.Phone),
		Place: req.Place,
	})
	if err != nil {
		renderEntryErr(ctx, "v1.HandleCreateEntry -> h.svc.CreateEntry", req.Code, err)
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandleUpdateEntry godoc
// @Summary      Update an entry
// @Description  The code cannot change.
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        code     path      string  true  "Entry code"
// @Param        request   body      request.UpdateEntryRequest true "request body"
// @Success      200      {object}   domain.Entry
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /entries/{code} [put]
// @Security     BearerAuth
func (h *EntryHandler) HandleUpdateEntry(ctx *gin.Context) {
	code := ctx.Param("code")

	var req request.UpdateEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.UpdateEntry(ctx.Request.Context(), domain.Entry{
		Code:  code,
		Name:  req.Name,
		Phone: request.NormalizePhone(req.Phone),
		Place: req.Place,
	})
	if err != nil {
		renderEntryErr(ctx, "v1.HandleUpdateEntry -> h.svc.UpdateEntry", code, err)
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// HandleDeleteEntry godoc
// @Summary      Delete an entry
// @Tags         entries
// @Param        code     path      string  true  "Entry code"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /entries/{code} [delete]
// @Security     BearerAuth
func (h *EntryHandler) HandleDeleteEntry(ctx *gin.Context) {
	code := ctx.Param("code")

	if err := h.svc.DeleteEntry(ctx.Request.Context(), code); err != nil {
		renderEntryErr(ctx, "v1.HandleDeleteEntry -> h.svc.DeleteEntry", code, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetStatement godoc
// @Summary      Customer statement
// @Description  Tokens of the entry between from and to (inclusive) with totals.
// @Tags         entries
// @Produce      json,html,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        code     path      string  true   "Entry code"
// @Param        from     query     string  false  "YYYY-MM-DD, default today"
// @Param        to       query     string  false  "YYYY-MM-DD, default today"
// @Param        format   query     string  false  "json, html or xlsx"
// @Success      200      {object}   domain.Statement
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /entries/{code}/statement [get]
// @Security     BearerAuth
func (h *EntryHandler) HandleGetStatement(ctx *gin.Context) {
	code := ctx.Param("code")

	period, err := queryPeriod(ctx, shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	format := ctx.DefaultQuery("format", "json")
	if format != "json" && format != "html" && format != "xlsx" {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unknown format %q", format)))
		return
	}

	st, err := h.svc.Statement(ctx.Request.Context(), code, period)
	if err != nil {
		renderEntryErr(ctx, "v1.HandleGetStatement -> h.svc.Statement", code, err)
		return
	}

	switch format {
	case "html":
		renderDocument(ctx, "v1.HandleGetStatement -> h.renderer.Statement", htmlContentType, "", func(w io.Writer) error {
			return h.renderer.Statement(w, st)
		})
	case "xlsx":
		fileName := fmt.Sprintf("statement_%s_%s.xlsx", st.Entry.Code, period.From.Format("20060102"))
		renderXLSX(ctx, "v1.HandleGetStatement -> report.WriteStatement", fileName, func(w io.Writer) error {
			return report.WriteStatement(w, st)
		})
	default:
		ctx.JSON(http.StatusOK, st)
	}
}

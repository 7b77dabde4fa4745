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

type ExpenseService interface {
	CreateType(ctx context.Context, name string) (domain.ExpenseType, error)
	ListTypes(ctx context.Context) ([]domain.ExpenseType, error)
	DeleteType(ctx context.Context, id uint) error
	CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)
	GetExpense(ctx context.Context, id uint) (domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	UpdateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id uint) error
	Summary(ctx context.Context, period domain.Period) (domain.ExpenseSummary, error)
}

// ExpenseHandler works on calendar dates stored as UTC midnight. Missing
// dates default to the shop's current day.
type ExpenseHandler struct {
	svc  ExpenseService
	days calendar
}

func NewExpenseHandler(svc ExpenseService, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{
		svc:  svc,
		days: utcCalendar(loc),
	}
}

func renderExpenseErr(ctx *gin.Context, op string, id uint, typeID uint, err error) {
	switch {
	case errors.Is(err, service.ErrExpenseNotFound):
		response.RenderErr(ctx, response.ErrNotFound("expense", "id", id))
	case errors.Is(err, service.ErrExpenseTypeNotFound):
		response.RenderErr(ctx, response.ErrNotFound("expense type", "id", typeID))
	case errors.Is(err, service.ErrExpenseTypeExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrExpenseTypeExists))
	case errors.Is(err, service.ErrExpenseTypeInUse):
		response.RenderErr(ctx, response.ErrConflict(service.ErrExpenseTypeInUse))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func expenseFromRequest(req request.ExpenseRequest) (domain.Expense, error) {
	date, err := domain.ParseDay(req.Date, time.UTC)
	if err != nil {
		return domain.Expense{}, err
	}

	return domain.Expense{
		Date:    date,
		TypeID:  req.TypeID,
		Amount:  req.Amount,
		PaidTo:  req.PaidTo,
		PayMode: domain.PayMode(req.PayMode),
		Remarks: req.Remarks,
	}, nil
}

func expenseFilter(ctx *gin.Context, days calendar) (domain.ExpenseFilter, error) {
	period, err := optionalPeriod(ctx, days)
	if err != nil {
		return domain.ExpenseFilter{}, err
	}

	typeID, err := queryInt(ctx, "type_id")
	if err != nil {
		return domain.ExpenseFilter{}, err
	}
	if typeID < 0 {
		return domain.ExpenseFilter{}, fmt.Errorf("invalid type_id: %d", typeID)
	}

	payMode := domain.PayMode(ctx.Query("pay_mode"))
	if payMode != "" && !payMode.Valid() {
		return domain.ExpenseFilter{}, fmt.Errorf("invalid pay_mode: %q", payMode)
	}

	return domain.ExpenseFilter{
		From:    period.From,
		To:      period.To,
		TypeID:  uint(typeID),
		PayMode: payMode,
	}, nil
}

// HandleListExpenseTypes godoc
// @Summary      List expense types
// @Tags         expenses
// @Produce      json
// @Success      200      {array}    domain.ExpenseType
// @Failure      500      {object}   response.Err
// @Router       /expense-types [get]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleListExpenseTypes(ctx *gin.Context) {
	types, err := h.svc.ListTypes(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListExpenseTypes -> h.svc.ListTypes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, types)
}

// HandleCreateExpenseType godoc
// @Summary      Create an expense type
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request   body      request.ExpenseTypeRequest true "request body"
// @Success      201      {object}   domain.ExpenseType
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expense-types [post]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleCreateExpenseType(ctx *gin.Context) {
	var req request.ExpenseTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateType(ctx.Request.Context(), req.Name)
	if err != nil {
		renderExpenseErr(ctx, "v1.HandleCreateExpenseType -> h.svc.CreateType", 0, 0, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleDeleteExpenseType godoc
// @Summary      Delete an expense type
// @Description  Types still referenced by expenses cannot be deleted.
// @Tags         expenses
// @Param        id       path      int  true  "Expense type ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expense-types/{id} [delete]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleDeleteExpenseType(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.DeleteType(ctx.Request.Context(), id); err != nil {
		renderExpenseErr(ctx, "v1.HandleDeleteExpenseType -> h.svc.DeleteType", 0, id, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListExpenses godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        date      query     string  false  "YYYY-MM-DD"
// @Param        from      query     string  false  "YYYY-MM-DD"
// @Param        to        query     string  false  "YYYY-MM-DD"
// @Param        type_id   query     int     false  "expense type"
// @Param        pay_mode  query     string  false  "cash, upi, card, bank or cheque"
// @Success      200      {array}    domain.Expense
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses [get]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleListExpenses(ctx *gin.Context) {
	filter, err := expenseFilter(ctx, h.days)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	expenses, err := h.svc.ListExpenses(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListExpenses -> h.svc.ListExpenses -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, expenses)
}

// HandleGetExpense godoc
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id       path      int  true  "Expense ID"
// @Success      200      {object}   domain.Expense
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses/{id} [get]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleGetExpense(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	expense, err := h.svc.GetExpense(ctx.Request.Context(), id)
	if err != nil {
		renderExpenseErr(ctx, "v1.HandleGetExpense -> h.svc.GetExpense", id, 0, err)
		return
	}

	ctx.JSON(http.StatusOK, expense)
}

// HandleCreateExpense godoc
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request   body      request.ExpenseRequest true "request body"
// @Success      201      {object}   domain.Expense
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses [post]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleCreateExpense(ctx *gin.Context) {
	var req request.ExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	expense, err := expenseFromRequest(req)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateExpense(ctx.Request.Context(), expense)
	if err != nil {
		renderExpenseErr(ctx, "v1.HandleCreateExpense -> h.svc.CreateExpense", 0, req.TypeID, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateExpense godoc
// @Summary      Update an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id       path      int  true  "Expense ID"
// @Param        request   body      request.ExpenseRequest true "request body"
// @Success      200      {object}   domain.Expense
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses/{id} [put]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleUpdateExpense(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.ExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	expense, err := expenseFromRequest(req)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	expense.ID = id

	updated, err := h.svc.UpdateExpense(ctx.Request.Context(), expense)
	if err != nil {
		renderExpenseErr(ctx, "v1.HandleUpdateExpense -> h.svc.UpdateExpense", id, req.TypeID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteExpense godoc
// @Summary      Delete an expense
// @Tags         expenses
// @Param        id       path      int  true  "Expense ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses/{id} [delete]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleDeleteExpense(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.DeleteExpense(ctx.Request.Context(), id); err != nil {
		renderExpenseErr(ctx, "v1.HandleDeleteExpense -> h.svc.DeleteExpense", id, 0, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetExpenseSummary godoc
// @Summary      Expense totals by type and pay mode
// @Tags         expenses
// @Produce      json
// @Param        from     query     string  false  "YYYY-MM-DD, default today"
// @Param        to       query     string  false  "YYYY-MM-DD, default today"
// @Success      200      {object}   domain.ExpenseSummary
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses/summary [get]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleGetExpenseSummary(ctx *gin.Context) {
	period, err := queryPeriod(ctx, h.days)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	summary, err := h.svc.Summary(ctx.Request.Context(), period)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetExpenseSummary -> h.svc.Summary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleExportExpenses godoc
// @Summary      Export expenses to Excel
// @Tags         expenses
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from     query     string  false  "YYYY-MM-DD, default today"
// @Param        to       query     string  false  "YYYY-MM-DD, default today"
// @Success      200      {file}     file
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /expenses/export [get]
// @Security     BearerAuth
func (h *ExpenseHandler) HandleExportExpenses(ctx *gin.Context) {
	period, err := queryPeriod(ctx, h.days)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	expenses, err := h.svc.ListExpenses(ctx.Request.Context(), domain.ExpenseFilter{From: period.From, To: period.To})
	if err != nil {
		err = fmt.Errorf("v1.HandleExportExpenses -> h.svc.ListExpenses -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	fileName := fmt.Sprintf("expenses_%s_%s.xlsx", period.From.Format("20060102"), period.LastDay().Format("20060102"))
	renderXLSX(ctx, "v1.HandleExportExpenses -> report.WriteExpenses", fileName, func(w io.Writer) error {
		return report.WriteExpenses(w, expenses)
	})
}

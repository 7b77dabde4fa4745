package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/domain"
)

type DashboardService interface {
	Day(ctx context.Context, t time.Time) (domain.DaySummary, error)
}

type DashboardHandler struct {
	svc DashboardService
	loc *time.Location
}

func NewDashboardHandler(svc DashboardService, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{
		svc: svc,
		loc: loc,
	}
}

// HandleGetDashboard godoc
// @Summary      Daily summary
// @Description  Token, skin test, exchange and expense totals for one shop day.
// @Tags         dashboard
// @Produce      json
// @Param        date     query     string  false  "YYYY-MM-DD, default today"
// @Success      200      {object}   domain.DaySummary
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /dashboard [get]
// @Security     BearerAuth
func (h *DashboardHandler) HandleGetDashboard(ctx *gin.Context) {
	day, err := queryDay(ctx, "date", shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	summary, err := h.svc.Day(ctx.Request.Context(), day)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetDashboard -> h.svc.Day -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         operations
// @Produce      json
// @Success      200      {object}   map[string]string
// @Failure      503      {object}   response.Err
// @Router       /health [get]
func (h *HealthHandler) HandleHealthcheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(pingCtx); err != nil {
		response.RenderErr(ctx, response.ErrServiceUnavailable(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

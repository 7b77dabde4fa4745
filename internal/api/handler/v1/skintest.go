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

type SkinTestService interface {
	CreateSkinTest(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error)
	GetSkinTest(ctx context.Context, tokenNo string) (domain.SkinTest, error)
	ListSkinTests(ctx context.Context, filter domain.SkinTestFilter) (domain.PageResult[domain.SkinTest], error)
	ExportSkinTests(ctx context.Context, period domain.Period) ([]domain.SkinTest, error)
	UpdateSkinTest(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error)
	DeleteSkinTest(ctx context.Context, tokenNo string) error
}

type SkinTestRenderer interface {
	SkinTestReport(w io.Writer, test domain.SkinTest) error
}

type SkinTestHandler struct {
	svc      SkinTestService
	renderer SkinTestRenderer
	loc      *time.Location
}

func NewSkinTestHandler(svc SkinTestService, renderer SkinTestRenderer, loc *time.Location) *SkinTestHandler {
	return &SkinTestHandler{
		svc:      svc,
		renderer: renderer,
		loc:      loc,
	}
}

func renderSkinTestErr(ctx *gin.Context, op string, tokenNo string, err error) {
	switch {
	case errors.Is(err, service.ErrSkinTestNotFound):
		response.RenderErr(ctx, response.ErrNotFound("skin test", "token_no", tokenNo))
	case errors.Is(err, service.ErrTokenNotFound):
		response.RenderErr(ctx, response.ErrNotFound("token", "token_no", tokenNo))
	case errors.Is(err, service.ErrSkinTestExists):
		response.RenderErr(ctx, response.ErrConflict(service.ErrSkinTestExists))
	case errors.Is(err, service.ErrCompositionOverflow), errors.Is(err, service.ErrPercentageRange):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func skinTestFromRequest(tokenNo string, req request.SkinTestRequest) domain.SkinTest {
	return domain.SkinTest{
		TokenNo: tokenNo,
		Composition: domain.Composition{
			Gold:      req.Gold,
			Silver:    req.Silver,
			Copper:    req.Copper,
			Zinc:      req.Zinc,
			Cadmium:   req.Cadmium,
			Nickel:    req.Nickel,
			Iridium:   req.Iridium,
			Ruthenium: req.Ruthenium,
			Osmium:    req.Osmium,
			Rhodium:   req.Rhodium,
			Lead:      req.Lead,
			Tungsten:  req.Tungsten,
			Platinum:  req.Platinum,
			Palladium: req.Palladium,
			Others:    req.Others,
		},
		Remarks: req.Remarks,
	}
}

// HandleListSkinTests godoc
// @Summary      List skin tests
// @Tags         skin-tests
// @Produce      json
// @Param        date       query     string  false  "YYYY-MM-DD"
// @Param        from       query     string  false  "YYYY-MM-DD"
// @Param        to         query     string  false  "YYYY-MM-DD"
// @Param        page       query     int     false  "page number"
// @Param        page_size  query     int     false  "page size"
// @Success      200      {object}   domain.PageResult[domain.SkinTest]
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests [get]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleListSkinTests(ctx *gin.Context) {
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

	result, err := h.svc.ListSkinTests(ctx.Request.Context(), domain.SkinTestFilter{
		From: period.From,
		To:   period.To,
		Page: page,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListSkinTests -> h.svc.ListSkinTests -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetSkinTest godoc
// @Summary      Get a skin test
// @Tags         skin-tests
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Success      200      {object}   domain.SkinTest
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests/{tokenNo} [get]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleGetSkinTest(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	test, err := h.svc.GetSkinTest(ctx.Request.Context(), tokenNo)
	if err != nil {
		renderSkinTestErr(ctx, "v1.HandleGetSkinTest -> h.svc.GetSkinTest", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, test)
}

// HandleCreateSkinTest godoc
// @Summary      Record a skin test
// @Description  Percentages may not add up to more than 100. Karat is derived from gold.
// @Tags         skin-tests
// @Accept       json
// @Produce      json
// @Param        request   body      request.SkinTestRequest true "request body"
// @Success      201      {object}   domain.SkinTest
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests [post]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleCreateSkinTest(ctx *gin.Context) {
	var req request.SkinTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.ValidateCreate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateSkinTest(ctx.Request.Context(), skinTestFromRequest(req.TokenNo, req))
	if err != nil {
		renderSkinTestErr(ctx, "v1.HandleCreateSkinTest -> h.svc.CreateSkinTest", req.TokenNo, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateSkinTest godoc
// @Summary      Update a skin test
// @Tags         skin-tests
// @Accept       json
// @Produce      json
// @Param        tokenNo  path      string  true  "Token number"
// @Param        request   body      request.SkinTestRequest true "request body"
// @Success      200      {object}   domain.SkinTest
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests/{tokenNo} [put]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleUpdateSkinTest(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	var req request.SkinTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateSkinTest(ctx.Request.Context(), skinTestFromRequest(tokenNo, req))
	if err != nil {
		renderSkinTestErr(ctx, "v1.HandleUpdateSkinTest -> h.svc.UpdateSkinTest", tokenNo, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteSkinTest godoc
// @Summary      Delete a skin test
// @Tags         skin-tests
// @Param        tokenNo  path      string  true  "Token number"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests/{tokenNo} [delete]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleDeleteSkinTest(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	if err := h.svc.DeleteSkinTest(ctx.Request.Context(), tokenNo); err != nil {
		renderSkinTestErr(ctx, "v1.HandleDeleteSkinTest -> h.svc.DeleteSkinTest", tokenNo, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetSkinTestReport godoc
// @Summary      Printable skin test report
// @Tags         skin-tests
// @Produce      html
// @Param        tokenNo  path      string  true  "Token number"
// @Success      200      {string}   string
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests/{tokenNo}/report [get]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleGetSkinTestReport(ctx *gin.Context) {
	tokenNo := ctx.Param("tokenNo")

	test, err := h.svc.GetSkinTest(ctx.Request.Context(), tokenNo)
	if err != nil {
		renderSkinTestErr(ctx, "v1.HandleGetSkinTestReport -> h.svc.GetSkinTest", tokenNo, err)
		return
	}

	renderDocument(ctx, "v1.HandleGetSkinTestReport -> h.renderer.SkinTestReport", htmlContentType, "", func(w io.Writer) error {
		return h.renderer.SkinTestReport(w, test)
	})
}

// HandleExportSkinTests godoc
// @Summary      Export skin tests to Excel
// @Tags         skin-tests
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from     query     string  false  "YYYY-MM-DD, default today"
// @Param        to       query     string  false  "YYYY-MM-DD, default today"
// @Success      200      {file}     file
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /skin-tests/export [get]
// @Security     BearerAuth
func (h *SkinTestHandler) HandleExportSkinTests(ctx *gin.Context) {
	period, err := queryPeriod(ctx, shopCalendar(h.loc))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tests, err := h.svc.ExportSkinTests(ctx.Request.Context(), period)
	if err != nil {
		err = fmt.Errorf("v1.HandleExportSkinTests -> h.svc.ExportSkinTests -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	fileName := fmt.Sprintf("skin_tests_%s_%s.xlsx", period.From.Format("20060102"), period.LastDay().Format("20060102"))
	renderXLSX(ctx, "v1.HandleExportSkinTests -> report.WriteSkinTests", fileName, func(w io.Writer) error {
		return report.WriteSkinTests(w, tests)
	})
}

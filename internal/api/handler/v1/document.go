package v1

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goldlab/assay-api/internal/api/handler/v1/response"
	"github.com/goldlab/assay-api/internal/report"
)

const htmlContentType = "text/html; charset=utf-8"

// renderDocument buffers the output of write so a failure still yields a
// clean 500. A non-empty fileName makes the response a download.
func renderDocument(ctx *gin.Context, op, contentType, fileName string, write func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
		return
	}

	if fileName != "" {
		ctx.Header("Content-Disposition", "attachment; filename="+fileName)
	}
	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}

func renderXLSX(ctx *gin.Context, op, fileName string, write func(w io.Writer) error) {
	renderDocument(ctx, op, report.XLSXContentType, fileName, write)
}

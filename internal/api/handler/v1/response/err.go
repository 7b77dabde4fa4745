package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON body of every error response.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	Status         string `json:"status"`
	Message        string `json:"error"`

	err error
}

func (e *Err) Error() string {
	return e.Message
}

func (e *Err) Unwrap() error {
	return e.err
}

// RenderErr aborts the request with e. Server errors are logged with the
// request id; their cause never reaches the client.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.Message,
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(code int, err error) *Err {
	if err == nil {
		err = errors.New(http.StatusText(code))
	}

	return &Err{
		HTTPStatusCode: code,
		Status:         http.StatusText(code),
		Message:        err.Error(),
		err:            err,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrNotFound(entity, key string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s %v not found", entity, key, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrWrongCredentials(err error) *Err {
	e := newErr(http.StatusUnauthorized, err)
	e.Message = "wrong username or password"

	return e
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrTooManyRequests() *Err {
	return newErr(http.StatusTooManyRequests, errors.New("too many requests, try again later"))
}

func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, err)
	e.Message = "internal server error"

	return e
}

func ErrServiceUnavailable(err error) *Err {
	e := newErr(http.StatusServiceUnavailable, err)
	e.Message = "service unavailable"

	return e
}

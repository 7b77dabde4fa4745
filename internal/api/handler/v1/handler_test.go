package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/service"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

type fakeTokenService struct {
	created   domain.Token
	createErr error
	tokens    map[string]domain.Token
	listed    domain.TokenFilter
}

func (f *fakeTokenService) NextTokenNo(context.Context) (string, error) { return "A0042", nil }

func (f *fakeTokenService) CreateToken(_ context.Context, token domain.Token) (domain.Token, error) {
	if f.createErr != nil {
		return domain.Token{}, f.createErr
	}
	token.TokenNo = "A0042"
	f.created = token
	return token, nil
}

func (f *fakeTokenService) GetToken(_ context.Context, tokenNo string) (domain.Token, error) {
	t, ok := f.tokens[tokenNo]
	if !ok {
		return domain.Token{}, service.ErrTokenNotFound
	}
	return t, nil
}

func (f *fakeTokenService) ListTokens(_ context.Context, filter domain.TokenFilter) (domain.PageResult[domain.Token], error) {
	f.listed = filter
	return domain.PageResult[domain.Token]{Page: filter.Page.Number, PageSize: filter.Page.Size}, nil
}

func (f *fakeTokenService) ExportTokens(context.Context, domain.Period) ([]domain.Token, error) {
	return []domain.Token{{TokenNo: "A0001", Weight: decimal.NewFromInt(1), Amount: decimal.NewFromInt(50)}}, nil
}

func (f *fakeTokenService) UpdateToken(_ context.Context, token domain.Token) (domain.Token, error) {
	return token, nil
}

func (f *fakeTokenService) SetPaid(_ context.Context, tokenNo string, paid bool) (domain.Token, error) {
	t, ok := f.tokens[tokenNo]
	if !ok {
		return domain.Token{}, service.ErrTokenNotFound
	}
	t.IsPaid = paid
	return t, nil
}

func (f *fakeTokenService) DeleteToken(_ context.Context, tokenNo string) error {
	if _, ok := f.tokens[tokenNo]; !ok {
		return service.ErrTokenNotFound
	}
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) Receipt(w io.Writer, token domain.Token) error {
	_, err := io.WriteString(w, "<html>"+token.TokenNo+"</html>")
	return err
}

func newTokenRouter(svc *fakeTokenService) *gin.Engine {
	h := NewTokenHandler(svc, fakeReceipts{}, time.UTC)
	r := newTestRouter()
	r.GET("/tokens", h.HandleListTokens)
	r.GET("/tokens/next", h.HandleNextTokenNo)
	r.GET("/tokens/export", h.HandleExportTokens)
	r.GET("/tokens/:tokenNo", h.HandleGetToken)
	r.GET("/tokens/:tokenNo/receipt", h.HandleGetReceipt)
	r.POST("/tokens", h.HandleCreateToken)
	r.PATCH("/tokens/:tokenNo/paid", h.HandleSetPaid)
	r.DELETE("/tokens/:tokenNo", h.HandleDeleteToken)

	return r
}

func TestTokenHandler_Create(t *testing.T) {
	svc := &fakeTokenService{}
	r := newTokenRouter(svc)

	w := doJSON(r, http.MethodPost, "/tokens", gin.H{
		"code":   "c101",
		"test":   "skin",
		"weight": "10.5",
		"amount": "50",
		"date":   "2024-03-01",
		"time":   "10:30",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, "c101", svc.created.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), svc.created.IssuedAt)
	assert.Equal(t, domain.TestSkin, svc.created.Test)
}

func TestTokenHandler_Create_Invalid(t *testing.T) {
	r := newTokenRouter(&fakeTokenService{})

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing code", gin.H{"test": "skin"}},
		{"unknown test", gin.H{"code": "C1", "test": "xray"}},
		{"negative weight", gin.H{"code": "C1", "test": "skin", "weight": "-1"}},
		{"time without date", gin.H{"code": "C1", "test": "skin", "time": "10:00"}},
		{"bad date", gin.H{"code": "C1", "test": "skin", "date": "01-03-2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/tokens", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestTokenHandler_Create_UnknownEntry(t *testing.T) {
	r := newTokenRouter(&fakeTokenService{createErr: service.ErrEntryNotFound})

	w := doJSON(r, http.MethodPost, "/tokens", gin.H{"code": "c9", "test": "photo"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "entry with code C9 not found", errorMessage(t, w))
}

func TestTokenHandler_NextAndGet(t *testing.T) {
	r := newTokenRouter(&fakeTokenService{tokens: map[string]domain.Token{"A0001": {TokenNo: "A0001"}}})

	w := doJSON(r, http.MethodGet, "/tokens/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A0042")

	w = doJSON(r, http.MethodGet, "/tokens/A0001", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/tokens/A0404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTokenHandler_List(t *testing.T) {
	svc := &fakeTokenService{}
	r := newTokenRouter(svc)

	w := doJSON(r, http.MethodGet, "/tokens?date=2024-03-01&code=c1&paid=false&page=2&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.listed.From)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), svc.listed.To)
	require.NotNil(t, svc.listed.IsPaid)
	assert.False(t, *svc.listed.IsPaid)
	assert.Equal(t, domain.Page{Number: 2, Size: 10}, svc.listed.Page)

	w = doJSON(r, http.MethodGet, "/tokens?paid=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/tokens?from=2024-03-05&to=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenHandler_SetPaid(t *testing.T) {
	r := newTokenRouter(&fakeTokenService{tokens: map[string]domain.Token{"A0001": {TokenNo: "A0001"}}})

	w := doJSON(r, http.MethodPatch, "/tokens/A0001/paid", gin.H{"is_paid": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_paid":true`)

	w = doJSON(r, http.MethodPatch, "/tokens/A0001/paid", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenHandler_Delete(t *testing.T) {
	r := newTokenRouter(&fakeTokenService{tokens: map[string]domain.Token{"A0001": {TokenNo: "A0001"}}})

	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/tokens/A0001", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/tokens/A0002", nil).Code)
}

func TestTokenHandler_Documents(t *testing.T) {
	r := newTokenRouter(&fakeTokenService{tokens: map[string]domain.Token{"A0001": {TokenNo: "A0001"}}})

	w := doJSON(r, http.MethodGet, "/tokens/A0001/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, htmlContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "A0001")

	w = doJSON(r, http.MethodGet, "/tokens/export?from=2024-03-01&to=2024-03-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "tokens_20240301_20240302.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

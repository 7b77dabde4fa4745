package v1

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/service"
)

type fakeEntryService struct {
	entries map[string]domain.Entry
	period  domain.Period
}

func (f *fakeEntryService) CreateEntry(_ context.Context, e domain.Entry) (domain.Entry, error) {
	e.Code = service.NormalizeCode(e.Code)
	if _, ok := f.entries[e.Code]; ok {
		return domain.Entry{}, service.ErrEntryCodeExists
	}
	for _, existing := range f.entries {
		if existing.Phone == e.Phone {
			return domain.Entry{}, service.ErrEntryPhoneExists
		}
	}
	f.entries[e.Code] = e
	return e, nil
}

func (f *fakeEntryService) GetEntry(_ context.Context, code string) (domain.Entry, error) {
	e, ok := f.entries[service.NormalizeCode(code)]
	if !ok {
		return domain.Entry{}, service.ErrEntryNotFound
	}
	return e, nil
}

func (f *fakeEntryService) ListEntries(_ context.Context, filter domain.EntryFilter) (domain.PageResult[domain.Entry], error) {
	return domain.PageResult[domain.Entry]{Page: filter.Page.Number, PageSize: filter.Page.Size}, nil
}

func (f *fakeEntryService) UpdateEntry(_ context.Context, e domain.Entry) (domain.Entry, error) {
	if _, ok := f.entries[e.Code]; !ok {
		return domain.Entry{}, service.ErrEntryNotFound
	}
	f.entries[e.Code] = e
	return e, nil
}

func (f *fakeEntryService) DeleteEntry(_ context.Context, code string) error {
	if code == "BUSY" {
		return service.ErrEntryInUse
	}
	return nil
}

func (f *fakeEntryService) Statement(ctx context.Context, code string, period domain.Period) (domain.Statement, error) {
	f.period = period
	entry, err := f.GetEntry(ctx, code)
	if err != nil {
		return domain.Statement{}, err
	}
	tokens := []domain.Token{{TokenNo: "A0001", Amount: decimal.NewFromInt(50)}}
	return domain.NewStatement(entry, period.From, period.LastDay(), tokens), nil
}

type fakeStatements struct{}

func (fakeStatements) Statement(w io.Writer, st domain.Statement) error {
	_, err := io.WriteString(w, "<h1>"+st.Entry.Name+"</h1>")
	return err
}

func newEntryRouter(svc *fakeEntryService) *gin.Engine {
	h := NewEntryHandler(svc, fakeStatements{}, time.UTC)
	r := newTestRouter()
	r.GET("/entries", h.HandleListEntries)
	r.GET("/entries/:code", h.HandleGetEntry)
	r.GET("/entries/:code/statement", h.HandleGetStatement)
	r.POST("/entries", h.HandleCreateEntry)
	r.PUT("/entries/:code", h.HandleUpdateEntry)
	r.DELETE("/entries/:code", h.HandleDeleteEntry)

	return r
}

func TestEntryHandler_Create(t *testing.T) {
	svc := &fakeEntryService{entries: map[string]domain.Entry{}}
	r := newEntryRouter(svc)

	w := doJSON(r, http.MethodPost, "/entries", gin.H{"code": "c101", "name": "Kumar", "phone": "+91 98430 12345"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "9843012345", svc.entries["C101"].Phone)

	w = doJSON(r, http.MethodPost, "/entries", gin.H{"code": "C101", "name": "Other", "phone": "9000000000"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "entry code already exists", errorMessage(t, w))

	w = doJSON(r, http.MethodPost, "/entries", gin.H{"code": "C102", "name": "Other", "phone": "98430-12345"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "phone already registered", errorMessage(t, w))

	w = doJSON(r, http.MethodPost, "/entries", gin.H{"code": "C103", "name": "Other", "phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntryHandler_GetUpdateDelete(t *testing.T) {
	r := newEntryRouter(&fakeEntryService{entries: map[string]domain.Entry{"C1": {Code: "C1", Name: "Kumar"}}})

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/entries/c1", nil).Code)

	w := doJSON(r, http.MethodGet, "/entries/C9", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "entry with code C9 not found", errorMessage(t, w))

	w = doJSON(r, http.MethodPut, "/entries/C1", gin.H{"name": "Kumar S", "phone": "9843012345"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodDelete, "/entries/BUSY", nil).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/entries/C1", nil).Code)
}

func TestEntryHandler_Statement(t *testing.T) {
	svc := &fakeEntryService{entries: map[string]domain.Entry{"C1": {Code: "C1", Name: "Kumar"}}}
	r := newEntryRouter(svc)

	w := doJSON(r, http.MethodGet, "/entries/C1/statement?from=2024-03-01&to=2024-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), svc.period.To)

	w = doJSON(r, http.MethodGet, "/entries/C1/statement?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Kumar</h1>")

	w = doJSON(r, http.MethodGet, "/entries/C1/statement?format=xlsx&from=2024-03-01&to=2024-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "statement_C1_20240301.xlsx")

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/entries/C1/statement?format=pdf", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/entries/C9/statement", nil).Code)
}

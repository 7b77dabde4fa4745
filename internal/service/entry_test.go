package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

type fakeEntries map[string]domain.Entry

func (f fakeEntries) Create(_ context.Context, e domain.Entry) (domain.Entry, error) {
	if _, ok := f[e.Code]; ok {
		return domain.Entry{}, repository.ErrEntryCodeExists
	}
	f[e.Code] = e
	return e, nil
}

func (f fakeEntries) FindByCode(_ context.Context, code string) (domain.Entry, error) {
	e, ok := f[code]
	if !ok {
		return domain.Entry{}, repository.ErrEntryNotFound
	}
	return e, nil
}

func (f fakeEntries) Find(context.Context, domain.EntryFilter) ([]domain.Entry, int64, error) {
	return nil, 0, nil
}

func (f fakeEntries) Update(_ context.Context, e domain.Entry) (domain.Entry, error) {
	f[e.Code] = e
	return e, nil
}

func (f fakeEntries) Delete(_ context.Context, code string) error {
	delete(f, code)
	return nil
}

func TestEntryService_CreateEntry_NormalizesCode(t *testing.T) {
	svc := NewEntryService(fakeEntries{}, newFakeTokens())

	created, err := svc.CreateEntry(context.Background(), domain.Entry{Code: " c101 ", Name: "Kumar"})
	require.NoError(t, err)
	assert.Equal(t, "C101", created.Code)

	_, err = svc.CreateEntry(context.Background(), domain.Entry{Code: "C101"})
	assert.ErrorIs(t, err, ErrEntryCodeExists)
}

func TestEntryService_Statement(t *testing.T) {
	entries := fakeEntries{"C1": {Code: "C1", Name: "Kumar"}}
	tokens := newFakeTokens(
		domain.Token{TokenNo: "A0001", Code: "C1", Weight: dec("5"), Amount: dec("50"), IsPaid: true},
		domain.Token{TokenNo: "A0002", Code: "C1", Weight: dec("2"), Amount: dec("30")},
		domain.Token{TokenNo: "A0003", Code: "C2", Amount: dec("99")},
	)
	svc := NewEntryService(entries, tokens)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	period, err := domain.NewPeriod(from, from.AddDate(0, 0, 6))
	require.NoError(t, err)

	st, err := svc.Statement(context.Background(), "c1", period)
	require.NoError(t, err)

	assert.Equal(t, 2, st.Count)
	assert.True(t, dec("80").Equal(st.TotalAmount))
	assert.True(t, dec("30").Equal(st.Unpaid))
	assert.Equal(t, from.AddDate(0, 0, 6), st.To)

	_, err = svc.Statement(context.Background(), "C9", period)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository/dao"
)

type memoryCache map[string][]byte

func (c memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c memoryCache) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c[key] = b
	return nil
}

func (c memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c, k)
	}
	return nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, any) (bool, error) { return false, assert.AnError }
func (brokenCache) Set(context.Context, string, any) error { return assert.AnError }
func (brokenCache) Delete(context.Context, ...string) error { return assert.AnError }

type countingEntryDAO struct {
	entries map[string]dao.Entry
	reads   int
}

func newCountingEntryDAO() *countingEntryDAO {
	return &countingEntryDAO{entries: map[string]dao.Entry{
		"C101": {ID: 1, Code: "C101", Name: "Kumar", Phone: "9843000000", Place: "Coimbatore"},
	}}
}

func (d *countingEntryDAO) Insert(_ context.Context, e dao.Entry) (dao.Entry, error) {
	d.entries[e.Code] = e
	return e, nil
}

func (d *countingEntryDAO) FindByCode(_ context.Context, code string) (dao.Entry, error) {
	d.reads++
	e, ok := d.entries[code]
	if !ok {
		return dao.Entry{}, dao.ErrEntryNotFound
	}
	return e, nil
}

func (d *countingEntryDAO) Find(context.Context, string, int, int) ([]dao.Entry, int64, error) {
	return nil, 0, nil
}

func (d *countingEntryDAO) Update(_ context.Context, e dao.Entry) (dao.Entry, error) {
	if _, ok := d.entries[e.Code]; !ok {
		return dao.Entry{}, dao.ErrEntryNotFound
	}
	d.entries[e.Code] = e
	return e, nil
}

func (d *countingEntryDAO) Delete(_ context.Context, code string) error {
	if _, ok := d.entries[code]; !ok {
		return dao.ErrEntryNotFound
	}
	delete(d.entries, code)
	return nil
}

func TestEntryRepository_FindByCode_ReadThrough(t *testing.T) {
	d := newCountingEntryDAO()
	c := memoryCache{}
	repo := NewEntryRepository(d, c)
	ctx := context.Background()

	first, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)
	assert.Contains(t, c, "entry:C101")

	second, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)

	assert.Equal(t, 1, d.reads)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, "9843000000", second.Phone)
}

func TestEntryRepository_FindByCode_NotFoundIsNotCached(t *testing.T) {
	d := newCountingEntryDAO()
	c := memoryCache{}
	repo := NewEntryRepository(d, c)

	_, err := repo.FindByCode(context.Background(), "C404")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Empty(t, c)
}

func TestEntryRepository_UpdateEvicts(t *testing.T) {
	d := newCountingEntryDAO()
	c := memoryCache{}
	repo := NewEntryRepository(d, c)
	ctx := context.Background()

	_, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)

	_, err = repo.Update(ctx, domain.Entry{ID: 1, Code: "C101", Name: "Kumar S", Phone: "9843000000"})
	require.NoError(t, err)
	assert.NotContains(t, c, "entry:C101")

	got, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)
	assert.Equal(t, "Kumar S", got.Name)
	assert.Equal(t, 2, d.reads)
}

func TestEntryRepository_DeleteEvicts(t *testing.T) {
	d := newCountingEntryDAO()
	c := memoryCache{}
	repo := NewEntryRepository(d, c)
	ctx := context.Background()

	_, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "C101"))
	assert.NotContains(t, c, "entry:C101")

	_, err = repo.FindByCode(ctx, "C101")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEntryRepository_FailedUpdateKeepsCache(t *testing.T) {
	d := newCountingEntryDAO()
	c := memoryCache{}
	repo := NewEntryRepository(d, c)
	ctx := context.Background()

	_, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)

	_, err = repo.Update(ctx, domain.Entry{Code: "C404", Name: "Nobody"})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Contains(t, c, "entry:C101")
}

func TestEntryRepository_BrokenCacheFallsBack(t *testing.T) {
	d := newCountingEntryDAO()
	repo := NewEntryRepository(d, brokenCache{})
	ctx := context.Background()

	got, err := repo.FindByCode(ctx, "C101")
	require.NoError(t, err)
	assert.Equal(t, "Kumar", got.Name)

	_, err = repo.Update(ctx, domain.Entry{ID: 1, Code: "C101", Name: "Kumar S"})
	assert.NoError(t, err)
	assert.NoError(t, repo.Delete(ctx, "C101"))
}

package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository/dao"
)

var (
	ErrEntryNotFound    = dao.ErrEntryNotFound
	ErrEntryCodeExists  = dao.ErrEntryCodeExists
	ErrEntryPhoneExists = dao.ErrEntryPhoneExists
	ErrEntryInUse       = dao.ErrEntryInUse
)

type EntryDAO interface {
	Insert(ctx context.Context, entry dao.Entry) (dao.Entry, error)
	FindByCode(ctx context.Context, code string) (dao.Entry, error)
	Find(ctx context.Context, query string, offset, limit int) ([]dao.Entry, int64, error)
	Update(ctx context.Context, entry dao.Entry) (dao.Entry, error)
	Delete(ctx context.Context, code string) error
}

// Cache is the look-aside store for single entries.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

type EntryRepository struct {
	dao   EntryDAO
	cache Cache
}

func NewEntryRepository(dao EntryDAO, cache Cache) *EntryRepository {
	return &EntryRepository{
		dao:   dao,
		cache: cache,
	}
}

func entryKey(code string) string {
	return "entry:" + code
}

func (r *EntryRepository) Create(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(entry))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// FindByCode reads through the cache. Cache failures fall back to the
// database.
func (r *EntryRepository) FindByCode(ctx context.Context, code string) (domain.Entry, error) {
	var cached domain.Entry
	found, err := r.cache.Get(ctx, entryKey(code), &cached)
	if err != nil {
		zap.L().Warn("entry cache read failed", zap.String("code", code), zap.Error(err))
	}
	if found {
		return cached, nil
	}

	e, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	entry := r.daoToDomain(e)
	if err := r.cache.Set(ctx, entryKey(code), entry); err != nil {
		zap.L().Warn("entry cache write failed", zap.String("code", code), zap.Error(err))
	}

	return entry, nil
}

func (r *EntryRepository) Find(ctx context.Context, filter domain.EntryFilter) ([]domain.Entry, int64, error) {
	found, total, err := r.dao.Find(ctx, filter.Query, filter.Page.Offset(), filter.Page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Find -> %w", err)
	}

	entries := make([]domain.Entry, 0, len(found))
	for _, e := range found {
		entries = append(entries, r.daoToDomain(e))
	}

	return entries, total, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(entry))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	r.evict(ctx, entry.Code)

	return r.daoToDomain(updated), nil
}

func (r *EntryRepository) Delete(ctx context.Context, code string) error {
	if err := r.dao.Delete(ctx, code); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	r.evict(ctx, code)

	return nil
}

func (r *EntryRepository) evict(ctx context.Context, code string) {
	if err := r.cache.Delete(ctx, entryKey(code)); err != nil {
		zap.L().Warn("entry cache evict failed", zap.String("code", code), zap.Error(err))
	}
}

func (r *EntryRepository) domainToDao(e domain.Entry) dao.Entry {
	return dao.Entry{
		ID:    e.ID,
		Code:  e.Code,
		Name:  e.Name,
		Phone: e.Phone,
		Place: e.Place,
	}
}

func (r *EntryRepository) daoToDomain(e dao.Entry) domain.Entry {
	return domain.Entry{
		ID:        e.ID,
		Code:      e.Code,
		Name:      e.Name,
		Phone:     e.Phone,
		Place:     e.Place,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

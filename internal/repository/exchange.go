package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository/dao"
)

var (
	ErrExchangeNotFound = dao.ErrExchangeNotFound
	ErrExchangeExists   = dao.ErrExchangeExists
)

type ExchangeDAO interface {
	Insert(ctx context.Context, ex dao.PureExchange) (dao.PureExchange, error)
	FindByTokenNo(ctx context.Context, tokenNo string) (dao.PureExchange, error)
	Find(ctx context.Context, from, to time.Time, offset, limit int) ([]dao.PureExchange, int64, error)
	Update(ctx context.Context, ex dao.PureExchange) (dao.PureExchange, error)
	Delete(ctx context.Context, tokenNo string) error
	Totals(ctx context.Context, from, to time.Time) (dao.ExchangeTotals, error)
}

type ExchangeRepository struct {
	dao ExchangeDAO
	loc *time.Location
}

func NewExchangeRepository(dao ExchangeDAO, loc *time.Location) *ExchangeRepository {
	return &ExchangeRepository{
		dao: dao,
		loc: loc,
	}
}

func (r *ExchangeRepository) Create(ctx context.Context, ex domain.PureExchange) (domain.PureExchange, error) {
	created, err := r.dao.Insert(ctx, domainToExchange(ex))
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ExchangeRepository) FindByTokenNo(ctx context.Context, tokenNo string) (domain.PureExchange, error) {
	found, err := r.dao.FindByTokenNo(ctx, tokenNo)
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("r.dao.FindByTokenNo -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ExchangeRepository) Find(ctx context.Context, filter domain.ExchangeFilter) ([]domain.PureExchange, int64, error) {
	found, total, err := r.dao.Find(ctx, filter.From, filter.To, filter.Page.Offset(), filter.Page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Find -> %w", err)
	}

	list := make([]domain.PureExchange, 0, len(found))
	for _, ex := range found {
		list = append(list, r.daoToDomain(ex))
	}

	return list, total, nil
}

func (r *ExchangeRepository) Update(ctx context.Context, ex domain.PureExchange) (domain.PureExchange, error) {
	updated, err := r.dao.Update(ctx, domainToExchange(ex))
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ExchangeRepository) Delete(ctx context.Context, tokenNo string) error {
	if err := r.dao.Delete(ctx, tokenNo); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) Totals(ctx context.Context, from, to time.Time, summary *domain.DaySummary) error {
	totals, err := r.dao.Totals(ctx, from, to)
	if err != nil {
		return fmt.Errorf("r.dao.Totals -> %w", err)
	}

	summary.Exchanges = totals.Count
	summary.ExchangeWeight = totals.ExWeight

	return nil
}

func domainToExchange(ex domain.PureExchange) dao.PureExchange {
	return dao.PureExchange{
		TokenNo:  ex.TokenNo,
		Weight:   ex.Weight,
		ExGold:   ex.ExGold,
		ExWeight: ex.ExWeight,
		Remarks:  ex.Remarks,
	}
}

func (r *ExchangeRepository) daoToDomain(ex dao.PureExchange) domain.PureExchange {
	out := domain.PureExchange{
		TokenNo:   ex.TokenNo,
		Weight:    ex.Weight,
		ExGold:    ex.ExGold,
		ExWeight:  ex.ExWeight,
		Remarks:   ex.Remarks,
		CreatedAt: ex.CreatedAt,
		UpdatedAt: ex.UpdatedAt,
	}
	if ex.Token != nil {
		out.Code = ex.Token.Code
		out.Name = ex.Token.Entry.Name
		out.Date = ex.Token.IssuedAt.In(r.loc).Format(domain.DateLayout)
	}

	return out
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository/dao"
)

var (
	ErrTokenNotFound = dao.ErrTokenNotFound
	ErrTokenExists   = dao.ErrTokenExists
	ErrTokenInUse    = dao.ErrTokenInUse
)

type TokenDAO interface {
	Insert(ctx context.Context, token dao.Token, next dao.NextTokenNo) (dao.Token, error)
	PeekNext(ctx context.Context, next dao.NextTokenNo) (string, error)
	FindByTokenNo(ctx context.Context, tokenNo string) (dao.Token, error)
	Find(ctx context.Context, q dao.TokenQuery) ([]dao.Token, int64, error)
	FindWithResults(ctx context.Context, q dao.TokenQuery) ([]dao.Token, error)
	Update(ctx context.Context, token dao.Token) (dao.Token, error)
	SetPaid(ctx context.Context, tokenNo string, paid bool) (dao.Token, error)
	Delete(ctx context.Context, tokenNo string) error
	Totals(ctx context.Context, from, to time.Time) ([]dao.TokenTotals, error)
}

type TokenRepository struct {
	dao TokenDAO
	loc *time.Location
}

func NewTokenRepository(dao TokenDAO, loc *time.Location) *TokenRepository {
	return &TokenRepository{
		dao: dao,
		loc: loc,
	}
}

func (r *TokenRepository) Create(ctx context.Context, token domain.Token, next func(last string) (string, error)) (domain.Token, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(token), next)
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TokenRepository) PeekNext(ctx context.Context, next func(last string) (string, error)) (string, error) {
	tokenNo, err := r.dao.PeekNext(ctx, next)
	if err != nil {
		return "", fmt.Errorf("r.dao.PeekNext -> %w", err)
	}

	return tokenNo, nil
}

func (r *TokenRepository) FindByTokenNo(ctx context.Context, tokenNo string) (domain.Token, error) {
	found, err := r.dao.FindByTokenNo(ctx, tokenNo)
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.FindByTokenNo -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TokenRepository) Find(ctx context.Context, filter domain.TokenFilter) ([]domain.Token, int64, error) {
	found, total, err := r.dao.Find(ctx, dao.TokenQuery{
		From:   filter.From,
		To:     filter.To,
		Code:   filter.Code,
		IsPaid: filter.IsPaid,
		Offset: filter.Page.Offset(),
		Limit:  filter.Page.Size,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return r.daosToDomain(found), total, nil
}

// FindBoard returns the tokens issued in [from, to) with their stage.
func (r *TokenRepository) FindBoard(ctx context.Context, from, to time.Time) ([]domain.BoardItem, error) {
	found, err := r.dao.FindWithResults(ctx, dao.TokenQuery{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindWithResults -> %w", err)
	}

	items := make([]domain.BoardItem, 0, len(found))
	for _, t := range found {
		stage := domain.StagePending
		switch {
		case t.PureExchange != nil:
			stage = domain.StageExchanged
		case t.SkinTest != nil:
			stage = domain.StageTested
		}

		items = append(items, domain.BoardItem{
			Token: r.daoToDomain(t),
			Stage: stage,
		})
	}

	return items, nil
}

func (r *TokenRepository) Update(ctx context.Context, token domain.Token) (domain.Token, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(token))
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TokenRepository) SetPaid(ctx context.Context, tokenNo string, paid bool) (domain.Token, error) {
	updated, err := r.dao.SetPaid(ctx, tokenNo, paid)
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.SetPaid -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TokenRepository) Delete(ctx context.Context, tokenNo string) error {
	if err := r.dao.Delete(ctx, tokenNo); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// Totals fills the token part of a day summary.
func (r *TokenRepository) Totals(ctx context.Context, from, to time.Time, summary *domain.DaySummary) error {
	totals, err := r.dao.Totals(ctx, from, to)
	if err != nil {
		return fmt.Errorf("r.dao.Totals -> %w", err)
	}

	for _, t := range totals {
		summary.Tokens += t.Count
		summary.TokensByTest[domain.TestType(t.Test)] = int(t.Count)
		summary.TotalAmount = summary.TotalAmount.Add(t.Amount)
		summary.Collected = summary.Collected.Add(t.Collected)
	}
	summary.Outstanding = summary.TotalAmount.Sub(summary.Collected)

	return nil
}

func (r *TokenRepository) domainToDao(t domain.Token) dao.Token {
	return dao.Token{
		ID:       t.ID,
		TokenNo:  t.TokenNo,
		IssuedAt: t.IssuedAt,
		Code:     t.Code,
		Test:     string(t.Test),
		Weight:   t.Weight,
		Sample:   t.Sample,
		Amount:   t.Amount,
		IsPaid:   t.IsPaid,
	}
}

func (r *TokenRepository) daoToDomain(t dao.Token) domain.Token {
	token := domain.Token{
		ID:           t.ID,
		TokenNo:      t.TokenNo,
		IssuedAt:     t.IssuedAt,
		Code:         t.Code,
		CustomerName: t.Entry.Name,
		Test:         domain.TestType(t.Test),
		Weight:       t.Weight,
		Sample:       t.Sample,
		Amount:       t.Amount,
		IsPaid:       t.IsPaid,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	token.Localize(r.loc)

	return token
}

func (r *TokenRepository) daosToDomain(tokens []dao.Token) []domain.Token {
	out := make([]domain.Token, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, r.daoToDomain(t))
	}

	return out
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

var (
	ErrExchangeNotFound     = repository.ErrExchangeNotFound
	ErrExchangeExists       = repository.ErrExchangeExists
	ErrWeightBelowDeduction = domain.ErrWeightBelowDeduction
	ErrExGoldUnknown        = errors.New("ex_gold not given and the token has no skin test")
)

type ExchangeRepository interface {
	Create(ctx context.Context, ex domain.PureExchange) (domain.PureExchange, error)
	FindByTokenNo(ctx context.Context, tokenNo string) (domain.PureExchange, error)
	Find(ctx context.Context, filter domain.ExchangeFilter) ([]domain.PureExchange, int64, error)
	Update(ctx context.Context, ex domain.PureExchange) (domain.PureExchange, error)
	Delete(ctx context.Context, tokenNo string) error
}

type ExchangeTokenRepository interface {
	FindByTokenNo(ctx context.Context, tokenNo string) (domain.Token, error)
}

type ExchangeSkinTestRepository interface {
	FindByTokenNo(ctx context.Context, tokenNo string) (domain.SkinTest, error)
}

// ExchangeInput carries the optional weight and purity of an exchange.
// Nil fields fall back to the token weight and the skin test gold.
type ExchangeInput struct {
	TokenNo string
	Weight  *decimal.Decimal
	ExGold  *decimal.Decimal
	Remarks string
}

type ExchangeService struct {
	repo      ExchangeRepository
	tokens    ExchangeTokenRepository
	skinTests ExchangeSkinTestRepository
	deduction decimal.Decimal
}

func NewExchangeService(repo ExchangeRepository, tokens ExchangeTokenRepository, skinTests ExchangeSkinTestRepository, deduction decimal.Decimal) *ExchangeService {
	return &ExchangeService{
		repo:      repo,
		tokens:    tokens,
		skinTests: skinTests,
		deduction: deduction,
	}
}

func (s *ExchangeService) resolve(ctx context.Context, in ExchangeInput) (domain.PureExchange, error) {
	ex := domain.PureExchange{
		TokenNo: in.TokenNo,
		Remarks: in.Remarks,
	}

	token, err := s.tokens.FindByTokenNo(ctx, in.TokenNo)
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("s.tokens.FindByTokenNo -> %w", err)
	}

	ex.Weight = token.Weight
	if in.Weight != nil {
		ex.Weight = *in.Weight
	}

	if in.ExGold != nil {
		ex.ExGold = *in.ExGold
	} else {
		test, err := s.skinTests.FindByTokenNo(ctx, in.TokenNo)
		if err != nil {
			if errors.Is(err, repository.ErrSkinTestNotFound) {
				return domain.PureExchange{}, ErrExGoldUnknown
			}

			return domain.PureExchange{}, fmt.Errorf("s.skinTests.FindByTokenNo -> %w", err)
		}
		ex.ExGold = test.Gold
	}

	if err := ex.Compute(s.deduction); err != nil {
		return domain.PureExchange{}, err
	}

	return ex, nil
}

func (s *ExchangeService) CreateExchange(ctx context.Context, in ExchangeInput) (domain.PureExchange, error) {
	ex, err := s.resolve(ctx, in)
	if err != nil {
		return domain.PureExchange{}, err
	}

	created, err := s.repo.Create(ctx, ex)
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ExchangeService) GetExchange(ctx context.Context, tokenNo string) (domain.PureExchange, error) {
	ex, err := s.repo.FindByTokenNo(ctx, tokenNo)
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("s.repo.FindByTokenNo -> %w", err)
	}

	return ex, nil
}

func (s *ExchangeService) ListExchanges(ctx context.Context, filter domain.ExchangeFilter) (domain.PageResult[domain.PureExchange], error) {
	list, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return domain.PageResult[domain.PureExchange]{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return domain.PageResult[domain.PureExchange]{
		Items:    list,
		Total:    total,
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

// UpdateExchange recomputes the exchange weight. Missing inputs keep the
// stored values.
func (s *ExchangeService) UpdateExchange(ctx context.Context, in ExchangeInput) (domain.PureExchange, error) {
	current, err := s.repo.FindByTokenNo(ctx, in.TokenNo)
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("s.repo.FindByTokenNo -> %w", err)
	}

	ex := domain.PureExchange{
		TokenNo: in.TokenNo,
		Weight:  current.Weight,
		ExGold:  current.ExGold,
		Remarks: in.Remarks,
	}
	if in.Weight != nil {
		ex.Weight = *in.Weight
	}
	if in.ExGold != nil {
		ex.ExGold = *in.ExGold
	}
	if err := ex.Compute(s.deduction); err != nil {
		return domain.PureExchange{}, err
	}

	updated, err := s.repo.Update(ctx, ex)
	if err != nil {
		return domain.PureExchange{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *ExchangeService) DeleteExchange(ctx context.Context, tokenNo string) error {
	if err := s.repo.Delete(ctx, tokenNo); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

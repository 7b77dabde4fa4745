package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/pkg/tokenno"
	"github.com/goldlab/assay-api/internal/repository"
)

var (
	ErrTokenNotFound     = repository.ErrTokenNotFound
	ErrTokenExists       = repository.ErrTokenExists
	ErrTokenInUse        = repository.ErrTokenInUse
	ErrTokensExhausted   = tokenno.ErrExhausted
	ErrInvalidTokenStart = tokenno.ErrInvalid
)

type TokenRepository interface {
	Create(ctx context.Context, token domain.Token, next func(last string) (string, error)) (domain.Token, error)
	PeekNext(ctx context.Context, next func(last string) (string, error)) (string, error)
	FindByTokenNo(ctx context.Context, tokenNo string) (domain.Token, error)
	Find(ctx context.Context, filter domain.TokenFilter) ([]domain.Token, int64, error)
	FindBoard(ctx context.Context, from, to time.Time) ([]domain.BoardItem, error)
	Update(ctx context.Context, token domain.Token) (domain.Token, error)
	SetPaid(ctx context.Context, tokenNo string, paid bool) (domain.Token, error)
	Delete(ctx context.Context, tokenNo string) error
}

// TokenPublisher receives every change to a token.
type TokenPublisher interface {
	Publish(event domain.TokenEvent)
}

// Recorder counts business events for metrics.
type Recorder interface {
	TokenIssued(test domain.TestType)
	ExpenseRecorded(mode domain.PayMode)
}

type TokenService struct {
	repo     TokenRepository
	pub      TokenPublisher
	recorder Recorder
	start    string
	loc      *time.Location
	now      func() time.Time
}

func NewTokenService(repo TokenRepository, pub TokenPublisher, recorder Recorder, start string, loc *time.Location) *TokenService {
	return &TokenService{
		repo:     repo,
		pub:      pub,
		recorder: recorder,
		start:    start,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *TokenService) next(last string) (string, error) {
	return tokenno.Next(last, s.start)
}

func (s *TokenService) NextTokenNo(ctx context.Context) (string, error) {
	tokenNo, err := s.repo.PeekNext(ctx, s.next)
	if err != nil {
		return "", fmt.Errorf("s.repo.PeekNext -> %w", err)
	}

	return tokenNo, nil
}

// CreateToken issues the next token number. A zero IssuedAt means now.
func (s *TokenService) CreateToken(ctx context.Context, token domain.Token) (domain.Token, error) {
	if token.IssuedAt.IsZero() {
		token.IssuedAt = s.now()
	}
	token.Code = NormalizeCode(token.Code)
	token.Weight = token.Weight.Round(3)
	token.Amount = token.Amount.Round(2)

	created, err := s.repo.Create(ctx, token, s.next)
	if err != nil {
		return domain.Token{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.recorder.TokenIssued(created.Test)
	s.pub.Publish(domain.TokenEvent{Event: domain.TokenCreated, Token: created})

	return created, nil
}

func (s *TokenService) GetToken(ctx context.Context, tokenNo string) (domain.Token, error) {
	token, err := s.repo.FindByTokenNo(ctx, tokenNo)
	if err != nil {
		return domain.Token{}, fmt.Errorf("s.repo.FindByTokenNo -> %w", err)
	}

	return token, nil
}

func (s *TokenService) ListTokens(ctx context.Context, filter domain.TokenFilter) (domain.PageResult[domain.Token], error) {
	filter.Code = NormalizeCode(filter.Code)

	tokens, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return domain.PageResult[domain.Token]{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return domain.PageResult[domain.Token]{
		Items:    tokens,
		Total:    total,
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

// ExportTokens returns every token issued in the period, unpaged.
func (s *TokenService) ExportTokens(ctx context.Context, period domain.Period) ([]domain.Token, error) {
	tokens, _, err := s.repo.Find(ctx, domain.TokenFilter{From: period.From, To: period.To})
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return tokens, nil
}

// Board lists the tokens of the day containing t with their stage.
func (s *TokenService) Board(ctx context.Context, day time.Time) ([]domain.BoardItem, error) {
	period := domain.DayPeriod(day, s.loc)

	items, err := s.repo.FindBoard(ctx, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindBoard -> %w", err)
	}

	return items, nil
}

func (s *TokenService) UpdateToken(ctx context.Context, token domain.Token) (domain.Token, error) {
	if token.IssuedAt.IsZero() {
		current, err := s.repo.FindByTokenNo(ctx, token.TokenNo)
		if err != nil {
			return domain.Token{}, fmt.Errorf("s.repo.FindByTokenNo -> %w", err)
		}
		token.IssuedAt = current.IssuedAt
	}
	token.Code = NormalizeCode(token.Code)
	token.Weight = token.Weight.Round(3)
	token.Amount = token.Amount.Round(2)

	updated, err := s.repo.Update(ctx, token)
	if err != nil {
		return domain.Token{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.pub.Publish(domain.TokenEvent{Event: domain.TokenUpdated, Token: updated})

	return updated, nil
}

func (s *TokenService) SetPaid(ctx context.Context, tokenNo string, paid bool) (domain.Token, error) {
	updated, err := s.repo.SetPaid(ctx, tokenNo, paid)
	if err != nil {
		return domain.Token{}, fmt.Errorf("s.repo.SetPaid -> %w", err)
	}

	s.pub.Publish(domain.TokenEvent{Event: domain.TokenPaid, Token: updated})

	return updated, nil
}

func (s *TokenService) DeleteToken(ctx context.Context, tokenNo string) error {
	if err := s.repo.Delete(ctx, tokenNo); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.pub.Publish(domain.TokenEvent{Event: domain.TokenDeleted, Token: domain.Token{TokenNo: tokenNo}})

	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

var (
	ErrEntryNotFound    = repository.ErrEntryNotFound
	ErrEntryCodeExists  = repository.ErrEntryCodeExists
	ErrEntryPhoneExists = repository.ErrEntryPhoneExists
	ErrEntryInUse       = repository.ErrEntryInUse
)

type EntryRepository interface {
	Create(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	FindByCode(ctx context.Context, code string) (domain.Entry, error)
	Find(ctx context.Context, filter domain.EntryFilter) ([]domain.Entry, int64, error)
	Update(ctx context.Context, entry domain.Entry) (domain.Entry, error)
	Delete(ctx context.Context, code string) error
}

// StatementTokenRepository lists the tokens that go on a statement.
type StatementTokenRepository interface {
	Find(ctx context.Context, filter domain.TokenFilter) ([]domain.Token, int64, error)
}

type EntryService struct {
	repo   EntryRepository
	tokens StatementTokenRepository
}

func NewEntryService(repo EntryRepository, tokens StatementTokenRepository) *EntryService {
	return &EntryService{
		repo:   repo,
		tokens: tokens,
	}
}

// NormalizeCode is the stored form of an entry code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *EntryService) CreateEntry(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	entry.Code = NormalizeCode(entry.Code)

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EntryService) GetEntry(ctx context.Context, code string) (domain.Entry, error) {
	entry, err := s.repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return entry, nil
}

func (s *EntryService) ListEntries(ctx context.Context, filter domain.EntryFilter) (domain.PageResult[domain.Entry], error) {
	filter.Query = strings.TrimSpace(filter.Query)

	entries, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return domain.PageResult[domain.Entry]{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return domain.PageResult[domain.Entry]{
		Items:    entries,
		Total:    total,
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

func (s *EntryService) UpdateEntry(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	entry.Code = NormalizeCode(entry.Code)

	updated, err := s.repo.Update(ctx, entry)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EntryService) DeleteEntry(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, NormalizeCode(code)); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// Statement collects every token of the entry issued within the period.
func (s *EntryService) Statement(ctx context.Context, code string, period domain.Period) (domain.Statement, error) {
	entry, err := s.GetEntry(ctx, code)
	if err != nil {
		return domain.Statement{}, err
	}

	tokens, _, err := s.tokens.Find(ctx, domain.TokenFilter{
		From: period.From,
		To:   period.To,
		Code: entry.Code,
	})
	if err != nil {
		return domain.Statement{}, fmt.Errorf("s.tokens.Find -> %w", err)
	}

	return domain.NewStatement(entry, period.From, period.LastDay(), tokens), nil
}

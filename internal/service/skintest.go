package service

import (
	"context"
	"fmt"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

var (
	ErrSkinTestNotFound    = repository.ErrSkinTestNotFound
	ErrSkinTestExists      = repository.ErrSkinTestExists
	ErrCompositionOverflow = domain.ErrCompositionOverflow
	ErrPercentageRange     = domain.ErrPercentageRange
)

type SkinTestRepository interface {
	Create(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error)
	FindByTokenNo(ctx context.Context, tokenNo string) (domain.SkinTest, error)
	Find(ctx context.Context, filter domain.SkinTestFilter) ([]domain.SkinTest, int64, error)
	Update(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error)
	Delete(ctx context.Context, tokenNo string) error
}

type SkinTestService struct {
	repo SkinTestRepository
}

func NewSkinTestService(repo SkinTestRepository) *SkinTestService {
	return &SkinTestService{
		repo: repo,
	}
}

func (s *SkinTestService) CreateSkinTest(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error) {
	test.Compute()
	if err := test.Validate(); err != nil {
		return domain.SkinTest{}, err
	}

	created, err := s.repo.Create(ctx, test)
	if err != nil {
		return domain.SkinTest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *SkinTestService) GetSkinTest(ctx context.Context, tokenNo string) (domain.SkinTest, error) {
	test, err := s.repo.FindByTokenNo(ctx, tokenNo)
	if err != nil {
		return domain.SkinTest{}, fmt.Errorf("s.repo.FindByTokenNo -> %w", err)
	}

	return test, nil
}

func (s *SkinTestService) ListSkinTests(ctx context.Context, filter domain.SkinTestFilter) (domain.PageResult[domain.SkinTest], error) {
	tests, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return domain.PageResult[domain.SkinTest]{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return domain.PageResult[domain.SkinTest]{
		Items:    tests,
		Total:    total,
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

func (s *SkinTestService) ExportSkinTests(ctx context.Context, period domain.Period) ([]domain.SkinTest, error) {
	tests, _, err := s.repo.Find(ctx, domain.SkinTestFilter{From: period.From, To: period.To})
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return tests, nil
}

func (s *SkinTestService) UpdateSkinTest(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error) {
	test.Compute()
	if err := test.Validate(); err != nil {
		return domain.SkinTest{}, err
	}

	updated, err := s.repo.Update(ctx, test)
	if err != nil {
		return domain.SkinTest{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *SkinTestService) DeleteSkinTest(ctx context.Context, tokenNo string) error {
	if err := s.repo.Delete(ctx, tokenNo); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

var (
	ErrExpenseTypeNotFound = repository.ErrExpenseTypeNotFound
	ErrExpenseTypeExists   = repository.ErrExpenseTypeExists
	ErrExpenseTypeInUse    = repository.ErrExpenseTypeInUse
	ErrExpenseNotFound     = repository.ErrExpenseNotFound
)

type ExpenseRepository interface {
	CreateType(ctx context.Context, name string) (domain.ExpenseType, error)
	FindTypes(ctx context.Context) ([]domain.ExpenseType, error)
	DeleteType(ctx context.Context, id uint) error
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)
	FindByID(ctx context.Context, id uint) (domain.Expense, error)
	Find(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	Update(ctx context.Context, e domain.Expense) (domain.Expense, error)
	Delete(ctx context.Context, id uint) error
	Summary(ctx context.Context, filter domain.ExpenseFilter) (domain.ExpenseSummary, error)
}

type ExpenseService struct {
	repo     ExpenseRepository
	recorder Recorder
}

func NewExpenseService(repo ExpenseRepository, recorder Recorder) *ExpenseService {
	return &ExpenseService{
		repo:     repo,
		recorder: recorder,
	}
}

func (s *ExpenseService) CreateType(ctx context.Context, name string) (domain.ExpenseType, error) {
	created, err := s.repo.CreateType(ctx, strings.TrimSpace(name))
	if err != nil {
		return domain.ExpenseType{}, fmt.Errorf("s.repo.CreateType -> %w", err)
	}

	return created, nil
}

func (s *ExpenseService) ListTypes(ctx context.Context) ([]domain.ExpenseType, error) {
	types, err := s.repo.FindTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTypes -> %w", err)
	}

	return types, nil
}

func (s *ExpenseService) DeleteType(ctx context.Context, id uint) error {
	if err := s.repo.DeleteType(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteType -> %w", err)
	}

	return nil
}

func (s *ExpenseService) CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	e.Amount = e.Amount.Round(2)

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.recorder.ExpenseRecorded(created.PayMode)

	return created, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id uint) (domain.Expense, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return e, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	list, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return list, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	e.Amount = e.Amount.Round(2)

	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// Summary totals the period's expenses. From and To of the result are the
// inclusive days.
func (s *ExpenseService) Summary(ctx context.Context, period domain.Period) (domain.ExpenseSummary, error) {
	summary, err := s.repo.Summary(ctx, domain.ExpenseFilter{From: period.From, To: period.To})
	if err != nil {
		return domain.ExpenseSummary{}, fmt.Errorf("s.repo.Summary -> %w", err)
	}

	summary.From = period.From.Format(domain.DateLayout)
	summary.To = period.LastDay().Format(domain.DateLayout)

	return summary, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository/dao"
)

var (
	ErrExpenseTypeNotFound = dao.ErrExpenseTypeNotFound
	ErrExpenseTypeExists   = dao.ErrExpenseTypeExists
	ErrExpenseTypeInUse    = dao.ErrExpenseTypeInUse
	ErrExpenseNotFound     = dao.ErrExpenseNotFound
)

const expenseTypesKey = "expense_types"

type ExpenseDAO interface {
	InsertType(ctx context.Context, t dao.ExpenseType) (dao.ExpenseType, error)
	FindTypes(ctx context.Context) ([]dao.ExpenseType, error)
	DeleteType(ctx context.Context, id uint) error
	Insert(ctx context.Context, e dao.Expense) (dao.Expense, error)
	FindByID(ctx context.Context, id uint) (dao.Expense, error)
	Find(ctx context.Context, q dao.ExpenseQuery) ([]dao.Expense, error)
	Update(ctx context.Context, e dao.Expense) (dao.Expense, error)
	Delete(ctx context.Context, id uint) error
	TotalsByType(ctx context.Context, q dao.ExpenseQuery) ([]dao.ExpenseGroupTotal, error)
	TotalsByPayMode(ctx context.Context, q dao.ExpenseQuery) ([]dao.ExpenseGroupTotal, error)
}

type ExpenseRepository struct {
	dao   ExpenseDAO
	cache Cache
}

func NewExpenseRepository(dao ExpenseDAO, cache Cache) *ExpenseRepository {
	return &ExpenseRepository{
		dao:   dao,
		cache: cache,
	}
}

func (r *ExpenseRepository) CreateType(ctx context.Context, name string) (domain.ExpenseType, error) {
	created, err := r.dao.InsertType(ctx, dao.ExpenseType{Name: name})
	if err != nil {
		return domain.ExpenseType{}, fmt.Errorf("r.dao.InsertType -> %w", err)
	}

	r.evictTypes(ctx)

	return typeToDomain(created), nil
}

// FindTypes reads the type list through the cache.
func (r *ExpenseRepository) FindTypes(ctx context.Context) ([]domain.ExpenseType, error) {
	var cached []domain.ExpenseType
	found, err := r.cache.Get(ctx, expenseTypesKey, &cached)
	if err != nil {
		zap.L().Warn("expense type cache read failed", zap.Error(err))
	}
	if found {
		return cached, nil
	}

	list, err := r.dao.FindTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTypes -> %w", err)
	}

	types := make([]domain.ExpenseType, 0, len(list))
	for _, t := range list {
		types = append(types, typeToDomain(t))
	}

	if err := r.cache.Set(ctx, expenseTypesKey, types); err != nil {
		zap.L().Warn("expense type cache write failed", zap.Error(err))
	}

	return types, nil
}

func (r *ExpenseRepository) DeleteType(ctx context.Context, id uint) error {
	if err := r.dao.DeleteType(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteType -> %w", err)
	}

	r.evictTypes(ctx)

	return nil
}

func (r *ExpenseRepository) evictTypes(ctx context.Context) {
	if err := r.cache.Delete(ctx, expenseTypesKey); err != nil {
		zap.L().Warn("expense type cache evict failed", zap.Error(err))
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	created, err := r.dao.Insert(ctx, expenseToDao(e))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return expenseToDomain(created), nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, id uint) (domain.Expense, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return expenseToDomain(found), nil
}

func (r *ExpenseRepository) Find(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	found, err := r.dao.Find(ctx, expenseQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("r.dao.Find -> %w", err)
	}

	list := make([]domain.Expense, 0, len(found))
	for _, e := range found {
		list = append(list, expenseToDomain(e))
	}

	return list, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	updated, err := r.dao.Update(ctx, expenseToDao(e))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return expenseToDomain(updated), nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// Summary groups the matching expenses by type and by pay mode.
func (r *ExpenseRepository) Summary(ctx context.Context, filter domain.ExpenseFilter) (domain.ExpenseSummary, error) {
	q := expenseQuery(filter)

	byType, err := r.dao.TotalsByType(ctx, q)
	if err != nil {
		return domain.ExpenseSummary{}, fmt.Errorf("r.dao.TotalsByType -> %w", err)
	}

	byMode, err := r.dao.TotalsByPayMode(ctx, q)
	if err != nil {
		return domain.ExpenseSummary{}, fmt.Errorf("r.dao.TotalsByPayMode -> %w", err)
	}

	summary := domain.ExpenseSummary{
		ByType:    groupTotals(byType),
		ByPayMode: groupTotals(byMode),
		Total:     decimal.Zero,
	}
	for _, t := range summary.ByType {
		summary.Total = summary.Total.Add(t.Amount)
	}

	return summary, nil
}

func groupTotals(in []dao.ExpenseGroupTotal) []domain.ExpenseTotal {
	out := make([]domain.ExpenseTotal, 0, len(in))
	for _, t := range in {
		out = append(out, domain.ExpenseTotal{
			Key:    t.Key,
			Count:  t.Count,
			Amount: t.Amount,
		})
	}

	return out
}

func expenseQuery(f domain.ExpenseFilter) dao.ExpenseQuery {
	return dao.ExpenseQuery{
		From:    f.From,
		To:      f.To,
		TypeID:  f.TypeID,
		PayMode: string(f.PayMode),
	}
}

func typeToDomain(t dao.ExpenseType) domain.ExpenseType {
	return domain.ExpenseType{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

func expenseToDao(e domain.Expense) dao.Expense {
	return dao.Expense{
		ID:      e.ID,
		Date:    e.Date,
		TypeID:  e.TypeID,
		Amount:  e.Amount,
		PaidTo:  e.PaidTo,
		PayMode: string(e.PayMode),
		Remarks: e.Remarks,
	}
}

func expenseToDomain(e dao.Expense) domain.Expense {
	return domain.Expense{
		ID:        e.ID,
		Date:      e.Date,
		TypeID:    e.TypeID,
		TypeName:  e.Type.Name,
		Amount:    e.Amount,
		PaidTo:    e.PaidTo,
		PayMode:   domain.PayMode(e.PayMode),
		Remarks:   e.Remarks,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

type fakeExpenses struct {
	types    map[uint]domain.ExpenseType
	expenses map[uint]domain.Expense
	nextID   uint
	filter   domain.ExpenseFilter
}

func newFakeExpenses() *fakeExpenses {
	return &fakeExpenses{
		types:    map[uint]domain.ExpenseType{1: {ID: 1, Name: "Rent"}},
		expenses: map[uint]domain.Expense{},
		nextID:   1,
	}
}

func (f *fakeExpenses) CreateType(_ context.Context, name string) (domain.ExpenseType, error) {
	id := uint(len(f.types) + 1)
	f.types[id] = domain.ExpenseType{ID: id, Name: name}
	return f.types[id], nil
}

func (f *fakeExpenses) FindTypes(context.Context) ([]domain.ExpenseType, error) {
	out := make([]domain.ExpenseType, 0, len(f.types))
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeExpenses) DeleteType(_ context.Context, id uint) error {
	for _, e := range f.expenses {
		if e.TypeID == id {
			return repository.ErrExpenseTypeInUse
		}
	}
	delete(f.types, id)
	return nil
}

func (f *fakeExpenses) Create(_ context.Context, e domain.Expense) (domain.Expense, error) {
	t, ok := f.types[e.TypeID]
	if !ok {
		return domain.Expense{}, repository.ErrExpenseTypeNotFound
	}
	e.ID = f.nextID
	e.TypeName = t.Name
	f.nextID++
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeExpenses) FindByID(_ context.Context, id uint) (domain.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return domain.Expense{}, repository.ErrExpenseNotFound
	}
	return e, nil
}

func (f *fakeExpenses) Find(_ context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	f.filter = filter
	out := make([]domain.Expense, 0, len(f.expenses))
	for _, e := range f.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExpenses) Update(_ context.Context, e domain.Expense) (domain.Expense, error) {
	if _, ok := f.expenses[e.ID]; !ok {
		return domain.Expense{}, repository.ErrExpenseNotFound
	}
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeExpenses) Delete(_ context.Context, id uint) error {
	if _, ok := f.expenses[id]; !ok {
		return repository.ErrExpenseNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *fakeExpenses) Summary(_ context.Context, filter domain.ExpenseFilter) (domain.ExpenseSummary, error) {
	f.filter = filter
	return domain.ExpenseSummary{
		ByType: []domain.ExpenseTotal{{Key: "Rent", Count: 1, Amount: dec("1500")}},
		Total:  dec("1500"),
	}, nil
}

func TestExpenseService_CreateExpense(t *testing.T) {
	repo := newFakeExpenses()
	recorder := newCountingRecorder()
	svc := NewExpenseService(repo, recorder)

	created, err := svc.CreateExpense(context.Background(), domain.Expense{
		Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		TypeID:  1,
		Amount:  dec("1499.995"),
		PaidTo:  "Landlord",
		PayMode: domain.PayUPI,
	})
	require.NoError(t, err)

	assert.Equal(t, "1500.00", created.Amount.StringFixed(2))
	assert.Equal(t, "Rent", created.TypeName)
	assert.Equal(t, 1, recorder.expenses[domain.PayUPI])

	_, err = svc.CreateExpense(context.Background(), domain.Expense{TypeID: 7, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrExpenseTypeNotFound)
	assert.Equal(t, 1, recorder.expenses[domain.PayUPI])
}

func TestExpenseService_Types(t *testing.T) {
	repo := newFakeExpenses()
	svc := NewExpenseService(repo, newCountingRecorder())

	created, err := svc.CreateType(context.Background(), "  Tea  ")
	require.NoError(t, err)
	assert.Equal(t, "Tea", created.Name)

	types, err := svc.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 2)

	_, err = svc.CreateExpense(context.Background(), domain.Expense{TypeID: 1, Amount: dec("10")})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteType(context.Background(), 1), ErrExpenseTypeInUse)
	assert.NoError(t, svc.DeleteType(context.Background(), created.ID))
}

func TestExpenseService_UpdateAndDelete(t *testing.T) {
	repo := newFakeExpenses()
	svc := NewExpenseService(repo, newCountingRecorder())

	created, err := svc.CreateExpense(context.Background(), domain.Expense{TypeID: 1, Amount: dec("10")})
	require.NoError(t, err)

	created.Amount = dec("12.345")
	updated, err := svc.UpdateExpense(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, "12.35", updated.Amount.StringFixed(2))

	_, err = svc.UpdateExpense(context.Background(), domain.Expense{ID: 99})
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	require.NoError(t, svc.DeleteExpense(context.Background(), created.ID))
	_, err = svc.GetExpense(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestExpenseService_Summary(t *testing.T) {
	repo := newFakeExpenses()
	svc := NewExpenseService(repo, newCountingRecorder())

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	period, err := domain.NewPeriod(from, to)
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), period)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", summary.From)
	assert.Equal(t, "2024-03-31", summary.To)
	assert.Equal(t, "1500", summary.Total.String())
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), repo.filter.To)
}

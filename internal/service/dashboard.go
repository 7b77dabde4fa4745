package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldlab/assay-api/internal/domain"
)

type DashboardTokenRepository interface {
	Totals(ctx context.Context, from, to time.Time, summary *domain.DaySummary) error
}

type DashboardSkinTestRepository interface {
	CountIssued(ctx context.Context, from, to time.Time) (int64, error)
}

type DashboardExchangeRepository interface {
	Totals(ctx context.Context, from, to time.Time, summary *domain.DaySummary) error
}

type DashboardExpenseRepository interface {
	Summary(ctx context.Context, filter domain.ExpenseFilter) (domain.ExpenseSummary, error)
}

type DashboardService struct {
	tokens    DashboardTokenRepository
	skinTests DashboardSkinTestRepository
	exchanges DashboardExchangeRepository
	expenses  DashboardExpenseRepository
	loc       *time.Location
}

func NewDashboardService(
	tokens DashboardTokenRepository,
	skinTests DashboardSkinTestRepository,
	exchanges DashboardExchangeRepository,
	expenses DashboardExpenseRepository,
	loc *time.Location,
) *DashboardService {
	return &DashboardService{
		tokens:    tokens,
		skinTests: skinTests,
		exchanges: exchanges,
		expenses:  expenses,
		loc:       loc,
	}
}

// Day summarises the shop's calendar day containing t.
func (s *DashboardService) Day(ctx context.Context, t time.Time) (domain.DaySummary, error) {
	period := domain.DayPeriod(t, s.loc)

	summary := domain.DaySummary{
		Date:           period.From.Format(domain.DateLayout),
		TokensByTest:   map[domain.TestType]int{domain.TestSkin: 0, domain.TestPhoto: 0},
		TotalAmount:    decimal.Zero,
		Collected:      decimal.Zero,
		Outstanding:    decimal.Zero,
		ExchangeWeight: decimal.Zero,
		Expenses:       decimal.Zero,
		NetCash:        decimal.Zero,
	}

	if err := s.tokens.Totals(ctx, period.From, period.To, &summary); err != nil {
		return domain.DaySummary{}, fmt.Errorf("s.tokens.Totals -> %w", err)
	}

	tested, err := s.skinTests.CountIssued(ctx, period.From, period.To)
	if err != nil {
		return domain.DaySummary{}, fmt.Errorf("s.skinTests.CountIssued -> %w", err)
	}
	summary.SkinTests = tested

	if err := s.exchanges.Totals(ctx, period.From, period.To, &summary); err != nil {
		return domain.DaySummary{}, fmt.Errorf("s.exchanges.Totals -> %w", err)
	}

	// Expense dates carry no zone; compare them as UTC calendar days.
	day := time.Date(period.From.Year(), period.From.Month(), period.From.Day(), 0, 0, 0, 0, time.UTC)
	expenses, err := s.expenses.Summary(ctx, domain.ExpenseFilter{From: day, To: day.AddDate(0, 0, 1)})
	if err != nil {
		return domain.DaySummary{}, fmt.Errorf("s.expenses.Summary -> %w", err)
	}
	summary.Expenses = expenses.Total
	summary.NetCash = summary.Collected.Sub(summary.Expenses)

	return summary, nil
}

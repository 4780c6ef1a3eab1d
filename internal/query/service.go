// Package query composes filtering, sorting and aggregation into the
// read paths the HTTP API and the terminal client use.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/report"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

// Service holds no state of its own; every call re-reads the store.
type Service struct {
	transactions *transaction.Service
	budgets      *budget.Service
	loc          *time.Location
}

// NewService builds a facade whose month boundaries are computed in loc.
func NewService(transactions *transaction.Service, budgets *budget.Service, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{transactions: transactions, budgets: budgets, loc: loc}
}

// Location is the zone month boundaries are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Transactions returns the transactions matching spec in the requested order.
func (s *Service) Transactions(ctx context.Context, spec transaction.FilterSpec, order transaction.SortOrder) ([]*transaction.Transaction, error) {
	txs, err := s.transactions.List(ctx, spec.Coarse())
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return transaction.Sort(transaction.Filter(txs, spec), order), nil
}

// Recent returns the newest limit transactions, unfiltered.
func (s *Service) Recent(ctx context.Context, limit int) ([]*transaction.Transaction, error) {
	if limit <= 0 {
		return []*transaction.Transaction{}, nil
	}

	txs, err := s.transactions.List(ctx, transaction.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return newest(txs, limit), nil
}

func newest(txs []*transaction.Transaction, limit int) []*transaction.Transaction {
	sorted := transaction.Sort(txs, transaction.SortDesc)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

func (s *Service) MonthlySummary(ctx context.Context, month, year int) (report.MonthlySummary, error) {
	p, err := report.NewPeriod(month, year, s.loc)
	if err != nil {
		return report.MonthlySummary{}, err
	}

	txs, err := s.periodTransactions(ctx, p, p)
	if err != nil {
		return report.MonthlySummary{}, err
	}

	budgets, err := s.periodBudgets(ctx, p)
	if err != nil {
		return report.MonthlySummary{}, err
	}

	return report.Summarize(p, txs, budgets), nil
}

func (s *Service) CategorySpending(ctx context.Context, month, year int, opts report.SpendingOptions) ([]report.CategorySpending, error) {
	p, err := report.NewPeriod(month, year, s.loc)
	if err != nil {
		return nil, err
	}

	txs, err := s.periodTransactions(ctx, p.Previous(), p)
	if err != nil {
		return nil, err
	}

	return report.SpendingByCategory(p, txs, opts), nil
}

func (s *Service) BudgetProgress(used, total decimal.Decimal) budget.Progress {
	return budget.ProgressOf(used, total)
}

type Dashboard struct {
	Summary  report.MonthlySummary
	Progress budget.Progress
	Spending []report.CategorySpending
	Recent   []*transaction.Transaction
}

// Dashboard combines the month summary, category spending and the newest
// recent transactions from a single read of the store.
func (s *Service) Dashboard(ctx context.Context, month, year, recent int) (*Dashboard, error) {
	p, err := report.NewPeriod(month, year, s.loc)
	if err != nil {
		return nil, err
	}

	all, err := s.transactions.List(ctx, transaction.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	budgets, err := s.periodBudgets(ctx, p)
	if err != nil {
		return nil, err
	}

	summary := report.Summarize(p, all, budgets)

	d := &Dashboard{
		Summary:  summary,
		Progress: summary.Progress(),
		Spending: report.SpendingByCategory(p, all, report.SpendingOptions{}),
		Recent:   []*transaction.Transaction{},
	}

	if recent > 0 {
		d.Recent = newest(all, recent)
	}

	return d, nil
}

// BudgetLine is one budget with the category's spending in the budget's month.
type BudgetLine struct {
	Budget   *budget.Budget
	Spent    decimal.Decimal
	Progress budget.Progress
}

func (s *Service) BudgetOverview(ctx context.Context, month, year int) ([]BudgetLine, error) {
	p, err := report.NewPeriod(month, year, s.loc)
	if err != nil {
		return nil, err
	}

	budgets, err := s.periodBudgets(ctx, p)
	if err != nil {
		return nil, err
	}

	txs, err := s.periodTransactions(ctx, p, p)
	if err != nil {
		return nil, err
	}

	spent := make(map[uuid.UUID]decimal.Decimal)
	for _, c := range report.SpendingByCategory(p, txs, report.SpendingOptions{}) {
		spent[c.CategoryID] = c.Amount
	}

	lines := make([]BudgetLine, 0, len(budgets))

	for _, b := range budgets {
		used := spent[b.CategoryID]

		lines = append(lines, BudgetLine{
			Budget:   b,
			Spent:    used,
			Progress: budget.ProgressOf(used, b.Amount),
		})
	}

	return lines, nil
}

// periodTransactions reads transactions from the start of from to the end of to.
func (s *Service) periodTransactions(ctx context.Context, from, to report.Period) ([]*transaction.Transaction, error) {
	start, end := from.Start(), to.End()

	txs, err := s.transactions.List(ctx, transaction.ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

func (s *Service) periodBudgets(ctx context.Context, p report.Period) ([]*budget.Budget, error) {
	budgets, err := s.budgets.List(ctx, budget.ListFilter{Month: new(int(p.Month)), Year: new(p.Year)})
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}

	return budgets, nil
}

package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/memstore"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/report"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type env struct {
	ctx          context.Context
	svc          *query.Service
	transactions *transaction.Service
	budgets      *budget.Service
	categories   map[string]*category.Category
	merchants    map[string]*merchant.Merchant
}

func setup(t *testing.T) *env {
	t.Helper()

	ctx := context.Background()
	store := memstore.New()

	e := &env{
		ctx:          ctx,
		transactions: transaction.NewService(store),
		budgets:      budget.NewService(store),
		categories:   make(map[string]*category.Category),
		merchants:    make(map[string]*merchant.Merchant),
	}
	e.svc = query.NewService(e.transactions, e.budgets, time.UTC)

	categories := category.NewService(store)
	for name, typ := range map[string]transaction.Type{
		"Groceries": transaction.TypeExpense,
		"Dining":    transaction.TypeExpense,
		"Salary":    transaction.TypeIncome,
	} {
		c, err := categories.Create(ctx, category.CreateParams{Name: name, Type: typ})
		require.NoError(t, err)

		e.categories[name] = c
	}

	merchants := merchant.NewService(store)
	for _, name := range []string{"Whole Foods", "Starbucks", "ABC Company"} {
		m, err := merchants.Create(ctx, merchant.CreateParams{Name: name})
		require.NoError(t, err)

		e.merchants[name] = m
	}

	return e
}

func (e *env) add(t *testing.T, date string, typ transaction.Type, amount, categoryName, merchantName, note string) *transaction.Transaction {
	t.Helper()

	d, err := time.Parse(time.DateOnly, date)
	require.NoError(t, err)

	tx, err := e.transactions.Create(e.ctx, transaction.CreateParams{
		Date:       d,
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		CategoryID: e.categories[categoryName].ID,
		MerchantID: e.merchants[merchantName].ID,
		Note:       note,
	})
	require.NoError(t, err)

	return tx
}

func (e *env) budget(t *testing.T, categoryName, amount string, month, year int) {
	t.Helper()

	_, err := e.budgets.Create(e.ctx, budget.CreateParams{
		CategoryID: e.categories[categoryName].ID,
		Amount:     decimal.RequireFromString(amount),
		Month:      month,
		Year:       year,
	})
	require.NoError(t, err)
}

func ids(txs []*transaction.Transaction) []uuid.UUID {
	out := make([]uuid.UUID, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}

	return out
}

func TestService_MonthlySummary(t *testing.T) {
	e := setup(t)
	e.add(t, "2023-05-01", transaction.TypeExpense, "45.99", "Groceries", "Whole Foods", "")
	e.add(t, "2023-05-05", transaction.TypeIncome, "2000", "Salary", "ABC Company", "")
	e.add(t, "2023-04-28", transaction.TypeExpense, "12", "Dining", "Starbucks", "")
	e.budget(t, "Groceries", "300", 5, 2023)

	s, err := e.svc.MonthlySummary(e.ctx, 5, 2023)
	require.NoError(t, err)

	assert.Equal(t, "2000", s.Income.String())
	assert.Equal(t, "45.99", s.Expenses.String())
	assert.Equal(t, "1954.01", s.Balance.String())
	assert.Equal(t, "300", s.BudgetTotal.String())

	empty, err := e.svc.MonthlySummary(e.ctx, 1, 2020)
	require.NoError(t, err)
	assert.True(t, empty.Income.IsZero())
	assert.True(t, empty.Balance.IsZero())

	_, err = e.svc.MonthlySummary(e.ctx, 13, 2023)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestService_Transactions(t *testing.T) {
	e := setup(t)
	groceries := e.add(t, "2023-05-01", transaction.TypeExpense, "45.99", "Groceries", "Whole Foods", "")
	coffee := e.add(t, "2023-05-02", transaction.TypeExpense, "5.50", "Dining", "Starbucks", "Coffee with colleagues")
	plain := e.add(t, "2023-05-03", transaction.TypeExpense, "4.00", "Dining", "Starbucks", "")
	salary := e.add(t, "2023-05-05", transaction.TypeIncome, "2000", "Salary", "ABC Company", "")

	t.Run("NoFilterNewestFirst", func(t *testing.T) {
		got, err := e.svc.Transactions(e.ctx, transaction.FilterSpec{}, transaction.SortDesc)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{salary.ID, plain.ID, coffee.ID, groceries.ID}, ids(got))
	})

	t.Run("SearchIsSubstringOnly", func(t *testing.T) {
		got, err := e.svc.Transactions(e.ctx, transaction.FilterSpec{SearchQuery: "coffee"}, transaction.SortAsc)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{coffee.ID}, ids(got))
	})

	t.Run("DateBoundsAndType", func(t *testing.T) {
		start := time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)
		end := time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC)

		got, err := e.svc.Transactions(e.ctx, transaction.FilterSpec{
			StartDate: &start,
			EndDate:   &end,
			Type:      new(transaction.TypeExpense),
		}, transaction.SortAsc)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{coffee.ID, plain.ID}, ids(got))
	})

	t.Run("Categories", func(t *testing.T) {
		got, err := e.svc.Transactions(e.ctx, transaction.FilterSpec{
			Categories: []uuid.UUID{e.categories["Groceries"].ID, e.categories["Salary"].ID},
		}, transaction.SortAsc)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{groceries.ID, salary.ID}, ids(got))
	})

	t.Run("ReflectsLatestWrites", func(t *testing.T) {
		require.NoError(t, e.transactions.Delete(e.ctx, plain.ID))

		got, err := e.svc.Transactions(e.ctx, transaction.FilterSpec{}, transaction.SortAsc)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestService_Recent(t *testing.T) {
	e := setup(t)
	first := e.add(t, "2023-05-01", transaction.TypeExpense, "1", "Groceries", "Whole Foods", "")
	second := e.add(t, "2023-05-02", transaction.TypeExpense, "2", "Groceries", "Whole Foods", "")
	third := e.add(t, "2023-05-03", transaction.TypeExpense, "3", "Groceries", "Whole Foods", "")

	got, err := e.svc.Recent(e.ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID}, ids(got))

	got, err = e.svc.Recent(e.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, ids(got))

	got, err = e.svc.Recent(e.ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_CategorySpending(t *testing.T) {
	e := setup(t)
	e.add(t, "2023-05-01", transaction.TypeExpense, "60", "Groceries", "Whole Foods", "")
	e.add(t, "2023-04-20", transaction.TypeExpense, "40", "Groceries", "Whole Foods", "")
	e.add(t, "2023-04-21", transaction.TypeExpense, "15", "Dining", "Starbucks", "")

	got, err := e.svc.CategorySpending(e.ctx, 5, 2023, report.SpendingOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].Category)
	assert.Equal(t, "40", got[0].PreviousMonthAmount.String())
	assert.InDelta(t, 50.0, got[0].Change(), 1e-9)

	got, err = e.svc.CategorySpending(e.ctx, 5, 2023, report.SpendingOptions{IncludeDormant: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dining", got[1].Category)
	assert.True(t, got[1].Amount.IsZero())
}

func TestService_BudgetProgress(t *testing.T) {
	e := setup(t)

	p := e.svc.BudgetProgress(decimal.NewFromInt(450), decimal.NewFromInt(500))
	assert.InDelta(t, 90.0, p.Percentage, 1e-9)
	assert.Equal(t, budget.StatusNearLimit, p.Status)

	p = e.svc.BudgetProgress(decimal.Zero, decimal.Zero)
	assert.Zero(t, p.Percentage)
}

func TestService_Dashboard(t *testing.T) {
	e := setup(t)
	e.add(t, "2023-05-01", transaction.TypeExpense, "45.99", "Groceries", "Whole Foods", "")
	e.add(t, "2023-05-05", transaction.TypeIncome, "2000", "Salary", "ABC Company", "")
	e.add(t, "2023-06-01", transaction.TypeExpense, "10", "Dining", "Starbucks", "")
	e.budget(t, "Groceries", "50", 5, 2023)

	d, err := e.svc.Dashboard(e.ctx, 5, 2023, 5)
	require.NoError(t, err)

	assert.Equal(t, "1954.01", d.Summary.Balance.String())
	assert.Equal(t, budget.StatusOverBudget, d.Progress.Status)
	require.Len(t, d.Spending, 1)
	assert.Equal(t, "Groceries", d.Spending[0].Category)
	assert.Len(t, d.Recent, 3)
	assert.Equal(t, "Starbucks", d.Recent[0].MerchantName)
}

func TestService_BudgetOverview(t *testing.T) {
	e := setup(t)
	e.add(t, "2023-05-01", transaction.TypeExpense, "360", "Groceries", "Whole Foods", "")
	e.add(t, "2023-04-01", transaction.TypeExpense, "999", "Dining", "Starbucks", "")
	e.budget(t, "Groceries", "500", 5, 2023)
	e.budget(t, "Dining", "100", 5, 2023)
	e.budget(t, "Dining", "100", 4, 2023)

	lines, err := e.svc.BudgetOverview(e.ctx, 5, 2023)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byName := make(map[string]query.BudgetLine)
	for _, l := range lines {
		byName[l.Budget.CategoryName] = l
	}

	assert.Equal(t, "360", byName["Groceries"].Spent.String())
	assert.Equal(t, budget.StatusNearLimit, byName["Groceries"].Progress.Status)
	assert.True(t, byName["Dining"].Spent.IsZero())
	assert.Equal(t, budget.StatusOnTrack, byName["Dining"].Progress.Status)
}

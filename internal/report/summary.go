package report

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type MonthlySummary struct {
	Period      Period
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Balance     decimal.Decimal
	BudgetUsed  decimal.Decimal
	BudgetTotal decimal.Decimal
}

// Summarize sums income and expenses dated inside p and the budgets set for p.
func Summarize(p Period, txs []*transaction.Transaction, budgets []*budget.Budget) MonthlySummary {
	s := MonthlySummary{Period: p}

	for _, tx := range txs {
		if !p.Contains(tx.Date) {
			continue
		}

		switch tx.Type {
		case transaction.TypeIncome:
			s.Income = s.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}

	for _, b := range budgets {
		if b.In(int(p.Month), p.Year) {
			s.BudgetTotal = s.BudgetTotal.Add(b.Amount)
		}
	}

	s.Balance = s.Income.Sub(s.Expenses)
	s.BudgetUsed = s.Expenses

	return s
}

// Progress is the share of the month's total budget used so far.
func (s MonthlySummary) Progress() budget.Progress {
	return budget.ProgressOf(s.BudgetUsed, s.BudgetTotal)
}

type CategorySpending struct {
	CategoryID          uuid.UUID
	Category            string
	Amount              decimal.Decimal
	PreviousMonthAmount decimal.Decimal
}

// Change is the month-over-month percent change.
func (c CategorySpending) Change() float64 {
	return PercentChange(c.Amount, c.PreviousMonthAmount)
}

type SpendingOptions struct {
	// IncludeDormant also emits categories with spending only in the previous month.
	IncludeDormant bool
}

// SpendingByCategory groups expenses in p by category alongside the same sum for the previous month.
// Results are ordered by amount descending, then category name.
func SpendingByCategory(p Period, txs []*transaction.Transaction, opts SpendingOptions) []CategorySpending {
	prev := p.Previous()

	var (
		order   []uuid.UUID
		current = make(map[uuid.UUID]*CategorySpending)
		earlier = make(map[uuid.UUID]*CategorySpending)
	)

	entry := func(m map[uuid.UUID]*CategorySpending, tx *transaction.Transaction) *CategorySpending {
		if e, ok := m[tx.CategoryID]; ok {
			return e
		}

		_, inCurrent := current[tx.CategoryID]
		_, inEarlier := earlier[tx.CategoryID]

		if !inCurrent && !inEarlier {
			order = append(order, tx.CategoryID)
		}

		e := &CategorySpending{CategoryID: tx.CategoryID, Category: tx.CategoryName}
		m[tx.CategoryID] = e

		return e
	}

	for _, tx := range txs {
		if tx.Type != transaction.TypeExpense {
			continue
		}

		switch {
		case p.Contains(tx.Date):
			e := entry(current, tx)
			e.Amount = e.Amount.Add(tx.Amount)
		case prev.Contains(tx.Date):
			e := entry(earlier, tx)
			e.Amount = e.Amount.Add(tx.Amount)
		}
	}

	out := make([]CategorySpending, 0, len(order))

	for _, id := range order {
		cur, inCurrent := current[id]
		old, inEarlier := earlier[id]

		if !inCurrent {
			if !opts.IncludeDormant {
				continue
			}

			cur = &CategorySpending{CategoryID: id, Category: old.Category}
		}

		if inEarlier {
			cur.PreviousMonthAmount = old.Amount
		}

		out = append(out, *cur)
	}

	slices.SortStableFunc(out, func(a, b CategorySpending) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return out
}

// PercentChange is (current-previous)/previous*100, or 0 when previous is not positive.
func PercentChange(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}

	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

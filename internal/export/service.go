// Package export writes transactions and monthly summaries out of the app.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/coinquest/internal/format"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/report"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

// Service writes query results in formats other tools (and the importer) can read.
type Service struct {
	query *query.Service
}

func NewService(q *query.Service) *Service {
	return &Service{query: q}
}

// CSV writes the transactions matching spec in importer.FormatCSV and
// returns how many rows were written.
func (s *Service) CSV(ctx context.Context, w io.Writer, spec transaction.FilterSpec, order transaction.SortOrder) (int, error) {
	txs, err := s.query.Transactions(ctx, spec, order)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(importer.Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format(time.RFC3339),
			string(tx.Type),
			tx.Amount.StringFixed(2),
			tx.CategoryName,
			tx.MerchantName,
			tx.Note,
		}

		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(txs), nil
}

// Filename is the suggested download name for a CSV export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("coinquest_%s.csv", t.Format("20060102"))
}

// Summary writes a plain-text report of one month: totals, budget use and
// spending per category.
func (s *Service) Summary(ctx context.Context, w io.Writer, month, year int) error {
	summary, err := s.query.MonthlySummary(ctx, month, year)
	if err != nil {
		return err
	}

	spending, err := s.query.CategorySpending(ctx, month, year, report.SpendingOptions{})
	if err != nil {
		return err
	}

	var sb strings.Builder

	title := summary.Period.String()
	sb.WriteString(title + "\n" + strings.Repeat("=", len(title)) + "\n")

	fmt.Fprintf(&sb, "Income:   %s\n", format.Currency(summary.Income))
	fmt.Fprintf(&sb, "Expenses: %s\n", format.Currency(summary.Expenses))
	fmt.Fprintf(&sb, "Balance:  %s\n", format.Currency(summary.Balance))

	if summary.BudgetTotal.IsPositive() {
		p := summary.Progress()
		fmt.Fprintf(&sb, "Budget:   %s of %s (%s, %s)\n",
			format.Currency(summary.BudgetUsed), format.Currency(summary.BudgetTotal),
			format.Percent(p.Percentage), p.Status)
	}

	if len(spending) > 0 {
		sb.WriteString("\nSpending by category\n")

		for _, c := range spending {
			fmt.Fprintf(&sb, "* %s | %s | %s vs last month\n",
				c.Category, format.Currency(c.Amount), format.Change(c.Change()))
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}

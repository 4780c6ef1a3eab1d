package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Montante" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns (e.g. "Débito"/"Crédito").
	amountSplit
)

// cgdProfile describes the column layout of one CGD export.
type cgdProfile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
}

func (p cgdProfile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// More specific profiles come first.
var cgdProfiles = []cgdProfile{
	{
		Name:       "card",
		DateCol:    "Data",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "statement",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Movimento",
	},
	{
		Name:       "account",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Montante",
	},
}

// CGDParser reads CGD bank exports. The bank description becomes both the
// merchant name and the note; the category is left for the caller to supply.
// The header row is located by scanning for a known profile, so preamble
// lines before it are skipped.
type CGDParser struct{}

func (CGDParser) Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(records)
	if profile == nil {
		return nil, errs.Invalid("file", "no matching CGD format: expected account, statement or card columns")
	}

	var rows []Row

	for i, record := range records[headerIdx+1:] {
		line := headerIdx + i + 2

		date, ok := parseCGDDate(cols.value(record, profile.DateCol))
		if !ok {
			continue
		}

		desc := cols.value(record, profile.DescCol)
		if desc == "" {
			return nil, rowErr(line, errs.Invalid("description", "is required"))
		}

		amount, typ, ok := profile.amount(cols, record)
		if !ok {
			continue
		}

		rows = append(rows, Row{
			Line:     line,
			Date:     date,
			Type:     typ,
			Amount:   amount,
			Merchant: desc,
			Note:     desc,
		})
	}

	return rows, nil
}

func detectProfile(records [][]string) (*cgdProfile, colIndex, int) {
	for rowIdx, record := range records {
		cols := indexColumns(record, func(s string) string { return s })

		for i := range cgdProfiles {
			if matchesProfile(&cgdProfiles[i], cols) {
				return &cgdProfiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *cgdProfile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseCGDDate reports false for empty or unparseable cells (footer rows, etc).
func parseCGDDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse("02-01-2006", s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func (p *cgdProfile) amount(cols colIndex, record []string) (decimal.Decimal, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		return signedAmount(cols.value(record, p.AmountCol))
	case amountSplit:
		return splitAmount(cols.value(record, p.DebitCol), cols.value(record, p.CreditCol))
	}

	return decimal.Zero, "", false
}

// signedAmount treats negative values as expenses.
func signedAmount(s string) (decimal.Decimal, transaction.Type, bool) {
	d, err := parseEuropeanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, "", false
	}

	if d.IsNegative() {
		return d.Neg(), transaction.TypeExpense, true
	}

	return d, transaction.TypeIncome, true
}

func splitAmount(debit, credit string) (decimal.Decimal, transaction.Type, bool) {
	if d, err := parseEuropeanAmount(debit); err == nil && !d.IsZero() {
		return d.Abs(), transaction.TypeExpense, true
	}

	if d, err := parseEuropeanAmount(credit); err == nil && !d.IsZero() {
		return d.Abs(), transaction.TypeIncome, true
	}

	return decimal.Zero, "", false
}

// parseEuropeanAmount parses amounts such as "1.234,56" or "-588,74".
func parseEuropeanAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}

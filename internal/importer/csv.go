package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

// Header is the column layout of FormatCSV. Column order in a file is free;
// the note column may be omitted.
var Header = []string{"date", "type", "amount", "category", "merchant", "note"}

var requiredColumns = Header[:5]

// CSVParser reads FormatCSV files.
type CSVParser struct{}

func (CSVParser) Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errs.Invalid("file", "is empty")
		}

		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := indexColumns(header, strings.ToLower)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, errs.Invalid("file", "missing column "+name)
		}
	}

	var rows []Row

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)

		row, err := parseCSVRecord(cols, record)
		if err != nil {
			return nil, rowErr(line, err)
		}

		row.Line = line
		rows = append(rows, row)
	}

	return rows, nil
}

func parseCSVRecord(cols colIndex, record []string) (Row, error) {
	date, err := parseDate(cols.value(record, "date"))
	if err != nil {
		return Row{}, err
	}

	amount, err := decimal.NewFromString(cols.value(record, "amount"))
	if err != nil {
		return Row{}, errs.Invalid("amount", "must be a decimal number")
	}

	return Row{
		Date:     date,
		Type:     transaction.Type(strings.ToLower(cols.value(record, "type"))),
		Amount:   amount,
		Category: cols.value(record, "category"),
		Merchant: cols.value(record, "merchant"),
		Note:     cols.value(record, "note"),
	}, nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errs.Invalid("date", "must be YYYY-MM-DD or RFC 3339")
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

func indexColumns(header []string, normalize func(string) string) colIndex {
	cols := make(colIndex, len(header))

	for i, cell := range header {
		name := normalize(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}

	return cols
}

// value returns the trimmed cell for the named column, or "" when absent.
func (c colIndex) value(row []string, name string) string {
	idx, ok := c[name]
	if !ok {
		return ""
	}

	return cellValue(row, idx)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

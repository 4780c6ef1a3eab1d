// Package importer turns uploaded CSV files into transactions.
package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type Format string

const (
	// FormatCSV is the native format, also produced by the export package.
	FormatCSV Format = "csv"
	// FormatCGD is a Caixa Geral de Depósitos account, statement or card export.
	FormatCGD Format = "cgd"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatCGD:
		return f, nil
	}

	return "", errs.Invalid("format", fmt.Sprintf("unknown import format %q", s))
}

// Row is one parsed line, still referencing category and merchant by name.
type Row struct {
	Line     int
	Date     time.Time
	Type     transaction.Type
	Amount   decimal.Decimal
	Category string
	Merchant string
	Note     string
}

// Parser reads rows from UTF-8 input.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
}

func rowErr(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}

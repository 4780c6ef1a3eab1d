// Package format renders money, percentages and dates for people.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	CurrencySymbol = "$"
	moneyPattern   = "#,###.##"
	percentPattern = "#,###.#"
)

// Currency renders d as "$1,234.56", or "-$1,234.56" when negative.
func Currency(d decimal.Decimal) string {
	s := humanize.FormatFloat(moneyPattern, d.Abs().Round(2).InexactFloat64())
	if d.Round(2).IsNegative() {
		return "-" + CurrencySymbol + s
	}

	return CurrencySymbol + s
}

// Percent renders p with one decimal, e.g. "72.5%".
func Percent(p float64) string {
	return humanize.FormatFloat(percentPattern, p) + "%"
}

// Change renders a percent change with an explicit sign, e.g. "+12.0%".
func Change(p float64) string {
	s := Percent(p)
	if p > 0 {
		return "+" + s
	}

	return s
}

func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Relative renders t relative to now, e.g. "3 days ago".
func Relative(t time.Time) string {
	return humanize.Time(t)
}

// Month renders "May 2023".
func Month(month, year int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Bar draws a text progress bar of the given width for a 0-100 percentage.
func Bar(percentage float64, width int) string {
	filled := int(percentage / 100 * float64(width))
	filled = min(max(filled, 0), width)

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

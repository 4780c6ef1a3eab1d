// Package report aggregates transactions into monthly rollups.
package report

import (
	"time"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

// Period is one calendar month in a location.
type Period struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

// NewPeriod validates month (1-12) and defaults loc to UTC.
func NewPeriod(month, year int, loc *time.Location) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, errs.Invalid("month", "must be between 1 and 12")
	}

	if loc == nil {
		loc = time.UTC
	}

	return Period{Year: year, Month: time.Month(month), Location: loc}, nil
}

// PeriodOf returns the period containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month(), Location: t.Location()}
}

func (p Period) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}

	return p.Location
}

// Start is the first instant of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, p.loc())
}

// End is the last instant of the month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func (p Period) Previous() Period {
	prev := p.Start().AddDate(0, -1, 0)

	return Period{Year: prev.Year(), Month: prev.Month(), Location: p.loc()}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && !t.After(p.End())
}

func (p Period) String() string {
	return p.Start().Format("January 2006")
}

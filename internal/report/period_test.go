package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/report"
)

func TestNewPeriod(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		_, err := report.NewPeriod(month, 2023, nil)
		assert.ErrorIs(t, err, errs.ErrValidation, "month %d", month)
	}

	p, err := report.NewPeriod(5, 2023, nil)
	require.NoError(t, err)
	assert.Equal(t, time.May, p.Month)
	assert.Equal(t, time.UTC, p.Location)
	assert.Equal(t, "May 2023", p.String())
}

func TestPeriod_Bounds(t *testing.T) {
	p, err := report.NewPeriod(2, 2024, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC), p.End())

	assert.True(t, p.Contains(p.Start()))
	assert.True(t, p.Contains(p.End()))
	assert.False(t, p.Contains(p.Start().Add(-time.Nanosecond)))
	assert.False(t, p.Contains(p.End().Add(time.Nanosecond)))
}

func TestPeriod_Previous(t *testing.T) {
	jan, err := report.NewPeriod(1, 2024, time.UTC)
	require.NoError(t, err)

	prev := jan.Previous()
	assert.Equal(t, 2023, prev.Year)
	assert.Equal(t, time.December, prev.Month)

	mar, err := report.NewPeriod(3, 2024, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.February, mar.Previous().Month)
}

func TestPeriod_Location(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	p, err := report.NewPeriod(5, 2023, loc)
	require.NoError(t, err)

	// 23:30 UTC on April 30th is already May in UTC+2.
	assert.True(t, p.Contains(time.Date(2023, 4, 30, 23, 30, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, 4, 30, 21, 30, 0, 0, time.UTC)))
}

package budget

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

var ErrNotFound = fmt.Errorf("budget %w", errs.ErrNotFound)

// Budget is the spending ceiling of one category for one calendar month.
// Month is 1-12.
type Budget struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	CategoryName string // Loaded via JOIN
	Amount       decimal.Decimal
	Month        int
	Year         int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// In reports whether the budget applies to the given month and year.
func (b *Budget) In(month, year int) bool {
	return b.Month == month && b.Year == year
}

package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

var ErrNotFound = fmt.Errorf("transaction %w", errs.ErrNotFound)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction represents a single income or expense event.
type Transaction struct {
	ID           uuid.UUID
	Date         time.Time
	Type         Type
	Amount       decimal.Decimal
	CategoryID   uuid.UUID
	CategoryName string // Loaded via JOIN
	MerchantID   uuid.UUID
	MerchantName string // Loaded via JOIN
	Note         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

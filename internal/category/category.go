package category

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

var ErrNotFound = fmt.Errorf("category %w", errs.ErrNotFound)

// Category classifies transactions and budgets. Its Type is fixed at creation.
type Category struct {
	ID        uuid.UUID
	Name      string
	Type      transaction.Type
	CreatedAt time.Time
	UpdatedAt *time.Time
}

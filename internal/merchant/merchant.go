package merchant

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

var ErrNotFound = fmt.Errorf("merchant %w", errs.ErrNotFound)

// Merchant is the counterparty of a transaction. Label is a free-text
// grouping hint and does not reference a Category.
type Merchant struct {
	ID        uuid.UUID
	Name      string
	Label     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

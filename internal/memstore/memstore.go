// Package memstore keeps every entity in process memory. It satisfies the
// category, merchant, transaction, budget and matching repositories and is
// used by tests and when STORAGE=memory.
package memstore

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

var (
	_ category.Repository    = (*Store)(nil)
	_ merchant.Repository    = (*Store)(nil)
	_ transaction.Repository = (*Store)(nil)
	_ budget.Repository      = (*Store)(nil)
	_ matching.Repository    = (*Store)(nil)
)

type alias struct {
	pattern    string
	merchantID uuid.UUID
}

// Store serialises access with a RWMutex. Records are copied on the way in
// and out so callers never share memory with the store.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	categories   []*category.Category
	merchants    []*merchant.Merchant
	transactions []*transaction.Transaction
	budgets      []*budget.Budget
	aliases      []alias
}

type Option func(*Store)

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func indexOf[T any](items []*T, id func(*T) uuid.UUID, want uuid.UUID) int {
	return slices.IndexFunc(items, func(item *T) bool { return id(item) == want })
}

func cloneOf[T any](v *T) *T {
	c := *v
	return &c
}

func cloneAll[T any](items []*T, keep func(*T) bool) []*T {
	var out []*T

	for _, item := range items {
		if keep == nil || keep(item) {
			out = append(out, cloneOf(item))
		}
	}

	return out
}

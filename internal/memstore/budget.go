package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

func budgetID(b *budget.Budget) uuid.UUID { return b.ID }

func (s *Store) checkBudget(b *budget.Budget) error {
	name, ok := s.categoryName(b.CategoryID)
	if !ok {
		return fmt.Errorf("category %s does not exist: %w", b.CategoryID, errs.ErrInvalidReference)
	}

	taken := slices.ContainsFunc(s.budgets, func(other *budget.Budget) bool {
		return other.ID != b.ID && other.CategoryID == b.CategoryID && other.In(b.Month, b.Year)
	})
	if taken {
		return fmt.Errorf("budget already exists for this category and month: %w", errs.ErrConflict)
	}

	b.CategoryName = name

	return nil
}

func (s *Store) CreateBudget(_ context.Context, b *budget.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = uuid.Nil
	if err := s.checkBudget(b); err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}

	b.ID = uuid.New()
	b.CreatedAt = s.now()
	b.UpdatedAt = nil

	s.budgets = append(s.budgets, cloneOf(b))

	return nil
}

func (s *Store) GetBudget(_ context.Context, id uuid.UUID) (*budget.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.budgets, budgetID, id)
	if i < 0 {
		return nil, budget.ErrNotFound
	}

	return cloneOf(s.budgets[i]), nil
}

// ListBudgets orders newest period first, then by category name.
func (s *Store) ListBudgets(_ context.Context, filter budget.ListFilter) ([]*budget.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneAll(s.budgets, func(b *budget.Budget) bool {
		if filter.Month != nil && b.Month != *filter.Month {
			return false
		}

		return filter.Year == nil || b.Year == *filter.Year
	})

	slices.SortStableFunc(out, func(a, b *budget.Budget) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}

		if a.Month != b.Month {
			return b.Month - a.Month
		}

		return strings.Compare(a.CategoryName, b.CategoryName)
	})

	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, b *budget.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.budgets, budgetID, b.ID)
	if i < 0 {
		return budget.ErrNotFound
	}

	if err := s.checkBudget(b); err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}

	b.CreatedAt = s.budgets[i].CreatedAt
	b.UpdatedAt = new(s.now())

	s.budgets[i] = cloneOf(b)

	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.budgets, budgetID, id)
	if i < 0 {
		return budget.ErrNotFound
	}

	s.budgets = slices.Delete(s.budgets, i, i+1)

	return nil
}

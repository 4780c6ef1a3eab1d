package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func categoryID(c *category.Category) uuid.UUID { return c.ID }

func (s *Store) categoryName(id uuid.UUID) (string, bool) {
	i := indexOf(s.categories, categoryID, id)
	if i < 0 {
		return "", false
	}

	return s.categories[i].Name, true
}

func (s *Store) categoryNameTaken(name string, except uuid.UUID) bool {
	return slices.ContainsFunc(s.categories, func(c *category.Category) bool {
		return c.ID != except && c.Name == name
	})
}

func (s *Store) CreateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryNameTaken(c.Name, uuid.Nil) {
		return fmt.Errorf("category name already exists: %w", errs.ErrConflict)
	}

	c.ID = uuid.New()
	c.CreatedAt = s.now()
	c.UpdatedAt = nil

	s.categories = append(s.categories, cloneOf(c))

	return nil
}

func (s *Store) GetCategory(_ context.Context, id uuid.UUID) (*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.categories, categoryID, id)
	if i < 0 {
		return nil, category.ErrNotFound
	}

	return cloneOf(s.categories[i]), nil
}

func (s *Store) ListCategories(_ context.Context, filter category.ListFilter) ([]*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneAll(s.categories, func(c *category.Category) bool {
		return filter.Type == nil || c.Type == *filter.Type
	})

	slices.SortStableFunc(out, func(a, b *category.Category) int { return strings.Compare(a.Name, b.Name) })

	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.categories, categoryID, c.ID)
	if i < 0 {
		return category.ErrNotFound
	}

	if s.categoryNameTaken(c.Name, c.ID) {
		return fmt.Errorf("category name already exists: %w", errs.ErrConflict)
	}

	stored := s.categories[i]
	stored.Name = c.Name
	stored.UpdatedAt = new(s.now())

	c.Type = stored.Type
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = stored.UpdatedAt

	for _, tx := range s.transactions {
		if tx.CategoryID == c.ID {
			tx.CategoryName = c.Name
		}
	}

	for _, b := range s.budgets {
		if b.CategoryID == c.ID {
			b.CategoryName = c.Name
		}
	}

	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.categories, categoryID, id)
	if i < 0 {
		return category.ErrNotFound
	}

	inUse := slices.ContainsFunc(s.transactions, func(tx *transaction.Transaction) bool { return tx.CategoryID == id }) ||
		slices.ContainsFunc(s.budgets, func(b *budget.Budget) bool { return b.CategoryID == id })
	if inUse {
		return fmt.Errorf("category is still referenced: %w", errs.ErrInvalidReference)
	}

	s.categories = slices.Delete(s.categories, i, i+1)

	return nil
}

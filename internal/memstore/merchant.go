package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func merchantID(m *merchant.Merchant) uuid.UUID { return m.ID }

func (s *Store) merchantName(id uuid.UUID) (string, bool) {
	i := indexOf(s.merchants, merchantID, id)
	if i < 0 {
		return "", false
	}

	return s.merchants[i].Name, true
}

func (s *Store) merchantNameTaken(name string, except uuid.UUID) bool {
	return slices.ContainsFunc(s.merchants, func(m *merchant.Merchant) bool {
		return m.ID != except && m.Name == name
	})
}

func (s *Store) CreateMerchant(_ context.Context, m *merchant.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.merchantNameTaken(m.Name, uuid.Nil) {
		return fmt.Errorf("merchant name already exists: %w", errs.ErrConflict)
	}

	m.ID = uuid.New()
	m.CreatedAt = s.now()
	m.UpdatedAt = nil

	s.merchants = append(s.merchants, cloneOf(m))

	return nil
}

func (s *Store) GetMerchant(_ context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.merchants, merchantID, id)
	if i < 0 {
		return nil, merchant.ErrNotFound
	}

	return cloneOf(s.merchants[i]), nil
}

func (s *Store) FindMerchantByName(_ context.Context, name string) (*merchant.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.merchants, func(m *merchant.Merchant) bool { return strings.EqualFold(m.Name, name) })
	if i < 0 {
		return nil, merchant.ErrNotFound
	}

	return cloneOf(s.merchants[i]), nil
}

func (s *Store) ListMerchants(_ context.Context) ([]*merchant.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneAll(s.merchants, nil)
	slices.SortStableFunc(out, func(a, b *merchant.Merchant) int { return strings.Compare(a.Name, b.Name) })

	return out, nil
}

func (s *Store) UpdateMerchant(_ context.Context, m *merchant.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.merchants, merchantID, m.ID)
	if i < 0 {
		return merchant.ErrNotFound
	}

	if s.merchantNameTaken(m.Name, m.ID) {
		return fmt.Errorf("merchant name already exists: %w", errs.ErrConflict)
	}

	stored := s.merchants[i]
	stored.Name = m.Name
	stored.Label = m.Label
	stored.UpdatedAt = new(s.now())

	m.CreatedAt = stored.CreatedAt
	m.UpdatedAt = stored.UpdatedAt

	for _, tx := range s.transactions {
		if tx.MerchantID == m.ID {
			tx.MerchantName = m.Name
		}
	}

	return nil
}

func (s *Store) DeleteMerchant(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.merchants, merchantID, id)
	if i < 0 {
		return merchant.ErrNotFound
	}

	if slices.ContainsFunc(s.transactions, func(tx *transaction.Transaction) bool { return tx.MerchantID == id }) {
		return fmt.Errorf("merchant is still referenced: %w", errs.ErrInvalidReference)
	}

	s.merchants = slices.Delete(s.merchants, i, i+1)
	s.aliases = slices.DeleteFunc(s.aliases, func(a alias) bool { return a.merchantID == id })

	return nil
}

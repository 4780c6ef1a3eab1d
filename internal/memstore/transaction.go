package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func transactionID(tx *transaction.Transaction) uuid.UUID { return tx.ID }

type refNames struct {
	category string
	merchant string
}

// resolve loads the category and merchant names for tx, failing on dangling references.
// tx is left untouched.
func (s *Store) resolve(tx *transaction.Transaction) (refNames, error) {
	categoryName, ok := s.categoryName(tx.CategoryID)
	if !ok {
		return refNames{}, fmt.Errorf("category %s does not exist: %w", tx.CategoryID, errs.ErrInvalidReference)
	}

	merchantName, ok := s.merchantName(tx.MerchantID)
	if !ok {
		return refNames{}, fmt.Errorf("merchant %s does not exist: %w", tx.MerchantID, errs.ErrInvalidReference)
	}

	return refNames{category: categoryName, merchant: merchantName}, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	return s.CreateTransactions(ctx, []*transaction.Transaction{tx})
}

// CreateTransactions stores either every transaction or none of them.
func (s *Store) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]refNames, len(txs))

	for i, tx := range txs {
		n, err := s.resolve(tx)
		if err != nil {
			return fmt.Errorf("creating transaction %d: %w", i+1, err)
		}

		names[i] = n
	}

	now := s.now()

	for i, tx := range txs {
		tx.CategoryName = names[i].category
		tx.MerchantName = names[i].merchant
		tx.ID = uuid.New()
		tx.CreatedAt = now
		tx.UpdatedAt = nil

		s.transactions = append(s.transactions, cloneOf(tx))
	}

	return nil
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.transactions, transactionID, id)
	if i < 0 {
		return nil, transaction.ErrNotFound
	}

	return cloneOf(s.transactions[i]), nil
}

// ListTransactions returns transactions inside the date bounds, oldest first.
// Transactions with the same date keep insertion order.
func (s *Store) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneAll(s.transactions, func(tx *transaction.Transaction) bool {
		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			return false
		}

		return filter.EndDate == nil || !tx.Date.After(*filter.EndDate)
	})

	slices.SortStableFunc(out, func(a, b *transaction.Transaction) int { return a.Date.Compare(b.Date) })

	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.transactions, transactionID, tx.ID)
	if i < 0 {
		return transaction.ErrNotFound
	}

	names, err := s.resolve(tx)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	tx.CategoryName = names.category
	tx.MerchantName = names.merchant
	tx.CreatedAt = s.transactions[i].CreatedAt
	tx.UpdatedAt = new(s.now())

	s.transactions[i] = cloneOf(tx)

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.transactions, transactionID, id)
	if i < 0 {
		return transaction.ErrNotFound
	}

	s.transactions = slices.Delete(s.transactions, i, i+1)

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/database"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Expected column order: selectTransactionColumns
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.Date, &typeStr, &tx.Amount,
		&tx.CategoryID, &tx.CategoryName, &tx.MerchantID, &tx.MerchantName,
		&tx.Note, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.date, t.type, t.amount, t.category_id, c.name, t.merchant_id, m.name,
	t.note, t.created_at, t.updated_at
`

const joinNames = `
	JOIN categories c ON c.id = t.category_id
	JOIN merchants m ON m.id = t.merchant_id
`

func mapWriteErr(err error) error {
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("category or merchant does not exist: %w", errs.ErrInvalidReference)
	}

	return err
}

func insert(ctx context.Context, q queryRower, tx *transaction.Transaction) error {
	query := `
		WITH t AS (
			INSERT INTO transactions (date, type, amount, category_id, merchant_id, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING *
		)
		SELECT t.id, c.name, m.name, t.created_at
		FROM t` + joinNames

	err := q.QueryRowContext(ctx, query,
		tx.Date,
		tx.Type,
		tx.Amount,
		tx.CategoryID,
		tx.MerchantID,
		tx.Note,
	).Scan(&tx.ID, &tx.CategoryName, &tx.MerchantName, &tx.CreatedAt)
	if err != nil {
		return mapWriteErr(err)
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := insert(ctx, s.db, tx); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

// CreateTransactions inserts all transactions in one database transaction.
func (s *Store) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for i, tx := range txs {
		if err := insert(ctx, dbTx, tx); err != nil {
			return fmt.Errorf("creating transaction %d: %w", i+1, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t` + joinNames + `
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t` + joinNames + `
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		WITH t AS (
			UPDATE transactions
			SET date = $1, type = $2, amount = $3, category_id = $4, merchant_id = $5, note = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING *
		)
		SELECT c.name, m.name, t.created_at, t.updated_at
		FROM t` + joinNames

	err := s.db.QueryRowContext(ctx, query,
		tx.Date,
		tx.Type,
		tx.Amount,
		tx.CategoryID,
		tx.MerchantID,
		tx.Note,
		tx.ID,
	).Scan(&tx.CategoryName, &tx.MerchantName, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

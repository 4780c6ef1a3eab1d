package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/database"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const budgetColumns = `b.id, b.category_id, c.name, b.amount, b.month, b.year, b.created_at, b.updated_at`

// Expected column order: budgetColumns
func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget

	err := s.Scan(&b.ID, &b.CategoryID, &b.CategoryName, &b.Amount, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func mapWriteErr(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("budget already exists for this category and month: %w", errs.ErrConflict)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("category does not exist: %w", errs.ErrInvalidReference)
	}

	return err
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		WITH ins AS (
			INSERT INTO budgets (category_id, amount, month, year, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING *
		)
		SELECT ins.id, c.name, ins.created_at
		FROM ins
		JOIN categories c ON c.id = ins.category_id
	`

	err := s.db.QueryRowContext(ctx, query, b.CategoryID, b.Amount, b.Month, b.Year).
		Scan(&b.ID, &b.CategoryName, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, filter budget.ListFilter) ([]*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b
		JOIN categories c ON c.id = b.category_id`

	var (
		conditions []string
		args       []any
	)

	if filter.Month != nil {
		args = append(args, *filter.Month)
		conditions = append(conditions, fmt.Sprintf("b.month = $%d", len(args)))
	}

	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("b.year = $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY b.year DESC, b.month DESC, c.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var out []*budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		WITH upd AS (
			UPDATE budgets
			SET category_id = $1, amount = $2, month = $3, year = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING *
		)
		SELECT c.name, upd.created_at, upd.updated_at
		FROM upd
		JOIN categories c ON c.id = upd.category_id
	`

	err := s.db.QueryRowContext(ctx, query, b.CategoryID, b.Amount, b.Month, b.Year, b.ID).
		Scan(&b.CategoryName, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.ErrNotFound
		}

		return fmt.Errorf("updating budget: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	if n == 0 {
		return budget.ErrNotFound
	}

	return nil
}

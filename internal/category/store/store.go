package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/category"
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

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, type, created_at, updated_at
func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var typeStr string

	if err := s.Scan(&c.ID, &c.Name, &typeStr, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.Type = transaction.Type(typeStr)

	return &c, nil
}

func mapWriteErr(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("category name already exists: %w", errs.ErrConflict)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("category is still referenced: %w", errs.ErrInvalidReference)
	}

	return err
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (name, type, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, c.Name, c.Type).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("creating category: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM categories WHERE id = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, filter category.ListFilter) ([]*category.Category, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM categories`

	var args []any

	if filter.Type != nil {
		query += " WHERE type = $1"

		args = append(args, *filter.Type)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category.ErrNotFound
		}

		return fmt.Errorf("updating category: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", mapWriteErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/database"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
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

const selectMerchant = `SELECT id, name, label, created_at, updated_at FROM merchants`

func scanMerchant(s scanner) (*merchant.Merchant, error) {
	var m merchant.Merchant
	if err := s.Scan(&m.ID, &m.Name, &m.Label, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	return &m, nil
}

func mapWriteErr(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("merchant name already exists: %w", errs.ErrConflict)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("merchant is still referenced: %w", errs.ErrInvalidReference)
	}

	return err
}

func (s *Store) CreateMerchant(ctx context.Context, m *merchant.Merchant) error {
	query := `
		INSERT INTO merchants (name, label, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, m.Name, m.Label).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("creating merchant: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) GetMerchant(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	m, err := scanMerchant(s.db.QueryRowContext(ctx, selectMerchant+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, merchant.ErrNotFound
		}

		return nil, fmt.Errorf("getting merchant: %w", err)
	}

	return m, nil
}

func (s *Store) FindMerchantByName(ctx context.Context, name string) (*merchant.Merchant, error) {
	m, err := scanMerchant(s.db.QueryRowContext(ctx, selectMerchant+` WHERE LOWER(name) = LOWER($1)`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, merchant.ErrNotFound
		}

		return nil, fmt.Errorf("finding merchant: %w", err)
	}

	return m, nil
}

func (s *Store) ListMerchants(ctx context.Context) ([]*merchant.Merchant, error) {
	rows, err := s.db.QueryContext(ctx, selectMerchant+` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing merchants: %w", err)
	}
	defer rows.Close()

	var out []*merchant.Merchant

	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning merchant: %w", err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating merchants: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateMerchant(ctx context.Context, m *merchant.Merchant) error {
	query := `
		UPDATE merchants
		SET name = $1, label = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, m.Name, m.Label, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return merchant.ErrNotFound
		}

		return fmt.Errorf("updating merchant: %w", mapWriteErr(err))
	}

	return nil
}

func (s *Store) DeleteMerchant(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting merchant: %w", mapWriteErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting merchant: %w", err)
	}

	if n == 0 {
		return merchant.ErrNotFound
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/database"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, rawName string) (uuid.UUID, error) {
	query := `
		SELECT merchant_id
		FROM merchant_aliases
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var merchantID uuid.UUID

	err := s.db.QueryRowContext(ctx, query, rawName).Scan(&merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding match: %w", err)
	}

	return merchantID, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern string, merchantID uuid.UUID) error {
	query := `
		INSERT INTO merchant_aliases (raw_pattern, merchant_id, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, rawPattern, merchantID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("merchant does not exist: %w", errs.ErrInvalidReference)
		}

		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

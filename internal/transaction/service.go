package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type CreateParams struct {
	Date       time.Time `validate:"required"`
	Type       Type      `validate:"oneof=expense income"`
	Amount     decimal.Decimal
	CategoryID uuid.UUID `validate:"required"`
	MerchantID uuid.UUID `validate:"required"`
	Note       string    `validate:"max=500"`
}

// ListFilter is the coarse pre-filter a store applies; FilterSpec holds the full query.
type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// maxScale matches the NUMERIC(14, 2) amount columns.
const maxScale = 2

func (s *Service) check(params CreateParams) error {
	if err := s.validate.Struct(params); err != nil {
		return errs.FromValidator(err)
	}

	if params.Amount.IsNegative() {
		return errs.Invalid("Amount", "must not be negative")
	}

	if params.Amount.Exponent() < -maxScale && !params.Amount.Equal(params.Amount.Round(maxScale)) {
		return errs.Invalid("Amount", "must have at most 2 decimal places")
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	tx := newTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// CreateBatch validates every entry before creating them all in one store operation.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	txs := make([]*Transaction, len(params))

	for i, p := range params {
		if err := s.check(p); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		txs[i] = newTransaction(p)
	}

	if err := s.repo.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	return txs, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Update replaces the stored transaction with the same ID.
func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	err := s.check(CreateParams{
		Date:       tx.Date,
		Type:       tx.Type,
		Amount:     tx.Amount,
		CategoryID: tx.CategoryID,
		MerchantID: tx.MerchantID,
		Note:       tx.Note,
	})
	if err != nil {
		return err
	}

	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

func newTransaction(p CreateParams) *Transaction {
	return &Transaction{
		Date:       p.Date,
		Type:       p.Type,
		Amount:     p.Amount,
		CategoryID: p.CategoryID,
		MerchantID: p.MerchantID,
		Note:       p.Note,
	}
}

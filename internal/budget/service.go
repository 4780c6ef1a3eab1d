package budget

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	ListBudgets(ctx context.Context, filter ListFilter) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error
}

// ListFilter narrows budgets to a month and/or year. Nil fields are unrestricted.
type ListFilter struct {
	Month *int
	Year  *int
}

type CreateParams struct {
	CategoryID uuid.UUID `validate:"required"`
	Amount     decimal.Decimal
	Month      int `validate:"min=1,max=12"`
	Year       int `validate:"min=1970,max=9999"`
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

// Create fails with errs.ErrConflict when the category already has a budget for that month.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if err := s.check(params); err != nil {
		return nil, err
	}

	b := &Budget{
		CategoryID: params.CategoryID,
		Amount:     params.Amount,
		Month:      params.Month,
		Year:       params.Year,
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx, filter)
}

func (s *Service) Update(ctx context.Context, b *Budget) error {
	err := s.check(CreateParams{
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Month:      b.Month,
		Year:       b.Year,
	})
	if err != nil {
		return err
	}

	return s.repo.UpdateBudget(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, id)
}

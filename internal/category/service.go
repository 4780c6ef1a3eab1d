package category

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, filter ListFilter) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type ListFilter struct {
	Type *transaction.Type
}

type CreateParams struct {
	Name string           `validate:"required,max=100"`
	Type transaction.Type `validate:"oneof=expense income"`
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

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	params.Name = strings.TrimSpace(params.Name)
	if err := s.validate.Struct(params); err != nil {
		return nil, errs.FromValidator(err)
	}

	c := &Category{Name: params.Name, Type: params.Type}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Category, error) {
	return s.repo.ListCategories(ctx, filter)
}

// Update replaces a category by ID, rejecting any change of Type.
func (s *Service) Update(ctx context.Context, c *Category) error {
	existing, err := s.repo.GetCategory(ctx, c.ID)
	if err != nil {
		return err
	}

	if c.Type != existing.Type {
		return errs.Invalid("Type", "cannot change after creation")
	}

	c.Name = strings.TrimSpace(c.Name)
	if err := s.validate.Struct(CreateParams{Name: c.Name, Type: c.Type}); err != nil {
		return errs.FromValidator(err)
	}

	return s.repo.UpdateCategory(ctx, c)
}

// Delete fails with errs.ErrInvalidReference while transactions or budgets still use the category.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, id)
}

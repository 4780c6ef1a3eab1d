package merchant

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=merchant
type Repository interface {
	CreateMerchant(ctx context.Context, m *Merchant) error
	GetMerchant(ctx context.Context, id uuid.UUID) (*Merchant, error)
	FindMerchantByName(ctx context.Context, name string) (*Merchant, error)
	ListMerchants(ctx context.Context) ([]*Merchant, error)
	UpdateMerchant(ctx context.Context, m *Merchant) error
	DeleteMerchant(ctx context.Context, id uuid.UUID) error
}

type CreateParams struct {
	Name  string `validate:"required,max=100"`
	Label string `validate:"max=100"`
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

func (s *Service) check(p *CreateParams) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Label = strings.TrimSpace(p.Label)

	if err := s.validate.Struct(p); err != nil {
		return errs.FromValidator(err)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Merchant, error) {
	if err := s.check(&params); err != nil {
		return nil, err
	}

	m := &Merchant{Name: params.Name, Label: params.Label}
	if err := s.repo.CreateMerchant(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Merchant, error) {
	return s.repo.GetMerchant(ctx, id)
}

// FindByName looks a merchant up by exact (case-insensitive) name.
func (s *Service) FindByName(ctx context.Context, name string) (*Merchant, error) {
	return s.repo.FindMerchantByName(ctx, strings.TrimSpace(name))
}

func (s *Service) List(ctx context.Context) ([]*Merchant, error) {
	return s.repo.ListMerchants(ctx)
}

func (s *Service) Update(ctx context.Context, m *Merchant) error {
	params := CreateParams{Name: m.Name, Label: m.Label}
	if err := s.check(&params); err != nil {
		return err
	}

	m.Name, m.Label = params.Name, params.Label

	return s.repo.UpdateMerchant(ctx, m)
}

// Delete fails with errs.ErrInvalidReference while transactions still use the merchant.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMerchant(ctx, id)
}

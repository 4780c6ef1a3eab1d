package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, rawName string) (uuid.UUID, error)
	CreateMapping(ctx context.Context, rawPattern string, merchantID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the merchant whose learned pattern appears in rawName.
// Returns uuid.Nil if no pattern matches. The longest pattern wins.
func (s *Service) Suggest(ctx context.Context, rawName string) (uuid.UUID, error) {
	rawName = strings.TrimSpace(rawName)
	if rawName == "" {
		return uuid.Nil, nil
	}

	return s.repo.FindMatch(ctx, rawName)
}

// Learn remembers that names containing rawPattern belong to merchantID.
func (s *Service) Learn(ctx context.Context, rawPattern string, merchantID uuid.UUID) error {
	rawPattern = strings.TrimSpace(rawPattern)
	if rawPattern == "" {
		return errs.Invalid("pattern", "is required")
	}

	if merchantID == uuid.Nil {
		return errs.Invalid("merchant_id", "is required")
	}

	return s.repo.CreateMapping(ctx, rawPattern, merchantID)
}

package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

// FindMatch picks the longest pattern contained in rawName, ignoring case.
// Among equally long patterns the most recently learned wins.
func (s *Store) FindMatch(_ context.Context, rawName string) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := strings.ToLower(rawName)

	var (
		best    uuid.UUID
		bestLen = -1
	)

	for _, a := range s.aliases {
		if len(a.pattern) >= bestLen && strings.Contains(name, strings.ToLower(a.pattern)) {
			best, bestLen = a.merchantID, len(a.pattern)
		}
	}

	return best, nil
}

func (s *Store) CreateMapping(_ context.Context, rawPattern string, merchantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.merchantName(merchantID); !ok {
		return fmt.Errorf("merchant %s does not exist: %w", merchantID, errs.ErrInvalidReference)
	}

	s.aliases = append(s.aliases, alias{pattern: rawPattern, merchantID: merchantID})

	return nil
}

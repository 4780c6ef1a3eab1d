package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// FilterSpec is the set of optional constraints applied when querying transactions.
// A nil or empty field places no constraint on its dimension; in particular an
// empty Categories or Merchants slice means "not filtered", never "match nothing".
type FilterSpec struct {
	SearchQuery string
	StartDate   *time.Time
	EndDate     *time.Time
	Categories  []uuid.UUID
	Merchants   []uuid.UUID
	Type        *Type
}

// Coarse returns the part of the spec a store can pre-filter on.
func (f FilterSpec) Coarse() ListFilter {
	return ListFilter{StartDate: f.StartDate, EndDate: f.EndDate}
}

// Filter returns the transactions matching every constraint in spec, in input order.
// The input slice is left untouched.
func Filter(txs []*Transaction, spec FilterSpec) []*Transaction {
	m := newMatcher(spec)

	out := make([]*Transaction, 0, len(txs))

	for _, tx := range txs {
		if m.match(tx) {
			out = append(out, tx)
		}
	}

	return out
}

type matcher struct {
	spec       FilterSpec
	fold       cases.Caser
	query      string
	categories map[uuid.UUID]struct{}
	merchants  map[uuid.UUID]struct{}
}

func newMatcher(spec FilterSpec) *matcher {
	m := &matcher{
		spec:       spec,
		fold:       cases.Fold(),
		categories: idSet(spec.Categories),
		merchants:  idSet(spec.Merchants),
	}

	if q := strings.TrimSpace(spec.SearchQuery); q != "" {
		m.query = m.fold.String(q)
	}

	return m
}

func (m *matcher) match(tx *Transaction) bool {
	if m.query != "" && !m.matchesQuery(tx) {
		return false
	}

	if m.spec.StartDate != nil && tx.Date.Before(*m.spec.StartDate) {
		return false
	}

	if m.spec.EndDate != nil && tx.Date.After(*m.spec.EndDate) {
		return false
	}

	if !member(m.categories, tx.CategoryID) || !member(m.merchants, tx.MerchantID) {
		return false
	}

	if m.spec.Type != nil && tx.Type != *m.spec.Type {
		return false
	}

	return true
}

func (m *matcher) matchesQuery(tx *Transaction) bool {
	for _, field := range []string{tx.MerchantName, tx.CategoryName, tx.Note} {
		if field != "" && strings.Contains(m.fold.String(field), m.query) {
			return true
		}
	}

	return false
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	if len(ids) == 0 {
		return nil
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

// member treats a nil set as unrestricted.
func member(set map[uuid.UUID]struct{}, id uuid.UUID) bool {
	if set == nil {
		return true
	}

	_, ok := set[id]

	return ok
}

package transaction

import (
	"slices"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder defaults to SortDesc (most recent first) for anything but "asc".
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}

	return SortDesc
}

// Sort returns a copy of txs ordered by date. Transactions with identical
// timestamps keep their relative input order.
func Sort(txs []*Transaction, order SortOrder) []*Transaction {
	out := slices.Clone(txs)

	slices.SortStableFunc(out, func(a, b *Transaction) int {
		c := a.Date.Compare(b.Date)
		if order != SortAsc {
			c = -c
		}

		return c
	})

	return out
}

package transaction_test

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, transaction.SortAsc, transaction.ParseSortOrder("asc"))
	assert.Equal(t, transaction.SortAsc, transaction.ParseSortOrder(" ASC "))
	assert.Equal(t, transaction.SortDesc, transaction.ParseSortOrder("desc"))
	assert.Equal(t, transaction.SortDesc, transaction.ParseSortOrder(""))
	assert.Equal(t, transaction.SortDesc, transaction.ParseSortOrder("sideways"))
}

func TestSort(t *testing.T) {
	txs := fixture()
	shuffled := []*transaction.Transaction{txs[2], txs[0], txs[3], txs[1]}

	asc := transaction.Sort(shuffled, transaction.SortAsc)
	assert.Equal(t, ids(txs), ids(asc))

	desc := transaction.Sort(asc, transaction.SortDesc)
	want := ids(asc)
	slices.Reverse(want)
	assert.Equal(t, want, ids(desc))

	// Input is untouched.
	assert.Equal(t, []uuid.UUID{txs[2].ID, txs[0].ID, txs[3].ID, txs[1].ID}, ids(shuffled))
}

func TestSort_DefaultIsDescending(t *testing.T) {
	txs := fixture()

	got := transaction.Sort(txs, "")
	assert.Equal(t, txs[3].ID, got[0].ID)
	assert.Equal(t, txs[0].ID, got[len(got)-1].ID)
}

func TestSort_StableForEqualDates(t *testing.T) {
	same := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	first := &transaction.Transaction{ID: uuid.New(), Date: same}
	second := &transaction.Transaction{ID: uuid.New(), Date: same}
	older := &transaction.Transaction{ID: uuid.New(), Date: same.Add(-time.Hour)}

	input := []*transaction.Transaction{first, older, second}

	desc := transaction.Sort(input, transaction.SortDesc)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, older.ID}, ids(desc))

	asc := transaction.Sort(input, transaction.SortAsc)
	assert.Equal(t, []uuid.UUID{older.ID, first.ID, second.ID}, ids(asc))
}

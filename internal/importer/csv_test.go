package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func TestCSVParser_Parse(t *testing.T) {
	input := `date,type,amount,category,merchant,note
2023-05-01,expense,45.99,Groceries,Whole Foods,
2023-05-05,Income,2000,Salary,ABC Company,"May, salary"

2023-05-06T08:30:00Z,expense,4.50,Dining,Starbucks,Coffee with colleagues
`

	rows, err := importer.CSVParser{}.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, transaction.TypeExpense, rows[0].Type)
	assert.Equal(t, "45.99", rows[0].Amount.String())
	assert.Equal(t, "Groceries", rows[0].Category)
	assert.Equal(t, "Whole Foods", rows[0].Merchant)
	assert.Empty(t, rows[0].Note)

	assert.Equal(t, transaction.TypeIncome, rows[1].Type)
	assert.Equal(t, "May, salary", rows[1].Note)

	assert.Equal(t, 5, rows[2].Line)
	assert.Equal(t, time.Date(2023, 5, 6, 8, 30, 0, 0, time.UTC), rows[2].Date)
}

func TestCSVParser_ColumnOrderAndOptionalNote(t *testing.T) {
	input := "Merchant,Amount,Date,Category,Type\nStarbucks,3.20,2023-05-02,Dining,expense\n"

	rows, err := importer.CSVParser{}.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Starbucks", rows[0].Merchant)
	assert.Equal(t, "3.2", rows[0].Amount.String())
	assert.Empty(t, rows[0].Note)
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "Empty", input: "", wantMsg: "is empty"},
		{name: "MissingColumn", input: "date,type,amount,category\n", wantMsg: "missing column merchant"},
		{name: "BadDate", input: "date,type,amount,category,merchant\n05/01/2023,expense,1,A,B\n", wantMsg: "line 2: invalid date"},
		{name: "BadAmount", input: "date,type,amount,category,merchant\n2023-05-01,expense,abc,A,B\n", wantMsg: "line 2: invalid amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.CSVParser{}.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := importer.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatCSV, f)

	f, err = importer.ParseFormat("cgd")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatCGD, f)

	_, err = importer.ParseFormat("ofx")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

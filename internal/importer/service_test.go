package importer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/encoding"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/memstore"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type harness struct {
	svc          *importer.Service
	merchants    *merchant.Service
	matching     *matching.Service
	transactions *transaction.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memstore.New()
	categories := category.NewService(store)

	for _, c := range []category.CreateParams{
		{Name: "Groceries", Type: transaction.TypeExpense},
		{Name: "Dining", Type: transaction.TypeExpense},
		{Name: "Salary", Type: transaction.TypeIncome},
	} {
		_, err := categories.Create(context.Background(), c)
		require.NoError(t, err)
	}

	h := &harness{
		merchants:    merchant.NewService(store),
		matching:     matching.NewService(store),
		transactions: transaction.NewService(store),
	}
	h.svc = importer.NewService(categories, h.merchants, h.matching, h.transactions)

	return h
}

func (h *harness) count(t *testing.T) int {
	t.Helper()

	txs, err := h.transactions.List(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)

	return len(txs)
}

func TestService_ImportCSV(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	existing, err := h.merchants.Create(ctx, merchant.CreateParams{Name: "Whole Foods"})
	require.NoError(t, err)

	input := `date,type,amount,category,merchant,note
2023-05-01,expense,45.99,groceries,WHOLE FOODS,
2023-05-02,expense,4.50,Dining,Starbucks,Coffee with colleagues
2023-05-03,expense,3.10,Dining,starbucks,
2023-05-05,income,2000,Salary,ABC Company,
`

	res, err := h.svc.Import(ctx, importer.FormatCSV, strings.NewReader(input), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, res.Charset)
	assert.Equal(t, 2, res.MerchantsCreated)
	require.Len(t, res.Transactions, 4)

	assert.Equal(t, existing.ID, res.Transactions[0].MerchantID)
	assert.Equal(t, "Groceries", res.Transactions[0].CategoryName)
	assert.Equal(t, res.Transactions[1].MerchantID, res.Transactions[2].MerchantID)
	assert.Equal(t, "Coffee with colleagues", res.Transactions[1].Note)
	assert.Equal(t, 4, h.count(t))
}

func TestService_ImportUnknownCategoryCreatesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	input := `date,type,amount,category,merchant
2023-05-01,expense,1,Groceries,Whole Foods
2023-05-02,expense,2,Travel,Airline
`

	_, err := h.svc.Import(ctx, importer.FormatCSV, strings.NewReader(input), importer.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidReference)
	assert.Contains(t, err.Error(), "line 3")
	assert.Zero(t, h.count(t))

	merchants, err := h.merchants.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, merchants)
}

func TestService_ImportInvalidRowCreatesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	input := `date,type,amount,category,merchant
2023-05-01,expense,1,Groceries,Whole Foods
2023-05-02,expense,-2,Groceries,Whole Foods
`

	_, err := h.svc.Import(ctx, importer.FormatCSV, strings.NewReader(input), importer.Options{})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Zero(t, h.count(t))
}

func TestService_ImportCGDUsesAliases(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	uber, err := h.merchants.Create(ctx, merchant.CreateParams{Name: "Uber"})
	require.NoError(t, err)
	require.NoError(t, h.matching.Learn(ctx, "UBER", uber.ID))

	utf8CSV := "Data mov.;Descrição;Montante\n" +
		"30-01-2026;UBER *TRIP HELP.UBER.COM;-12,40\n" +
		"31-01-2026;CAFÉ CENTRAL;-3,00\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	res, err := h.svc.Import(ctx, importer.FormatCGD, bytes.NewReader(latin1), importer.Options{Category: "Dining"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	assert.NotEqual(t, encoding.UTF8, res.Charset)
	assert.Equal(t, uber.ID, res.Transactions[0].MerchantID)
	assert.Equal(t, "UBER *TRIP HELP.UBER.COM", res.Transactions[0].Note)
	assert.Equal(t, "CAFÉ CENTRAL", res.Transactions[1].MerchantName)
	assert.Equal(t, "Dining", res.Transactions[1].CategoryName)
	assert.Equal(t, 1, res.MerchantsCreated)
}

func TestService_ImportCGDRequiresCategory(t *testing.T) {
	h := newHarness(t)

	input := "Data mov.;Descrição;Montante\n30-01-2026;SHOP;-1,00\n"

	_, err := h.svc.Import(context.Background(), importer.FormatCGD, strings.NewReader(input), importer.Options{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestService_ImportEmpty(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.Import(context.Background(), importer.FormatCSV, strings.NewReader(headerLine()), importer.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
}

func headerLine() string {
	return strings.Join(importer.Header, ",") + "\n"
}

func TestService_ImportLongMerchantNames(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	prefix := strings.Repeat("A", 100)
	input := "date,type,amount,category,merchant,note\n" +
		"2024-05-01,expense,10.00,Groceries," + prefix + "AAAAAAAAAAAAAAAAAAAA,x\n" +
		"2024-05-02,expense,5.00,Groceries," + prefix + "BBBBBBBBBB,y\n"

	first, err := h.svc.Import(ctx, importer.FormatCSV, strings.NewReader(input), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.MerchantsCreated)
	require.Len(t, first.Transactions, 2)
	assert.Equal(t, first.Transactions[0].MerchantID, first.Transactions[1].MerchantID)

	second, err := h.svc.Import(ctx, importer.FormatCSV, strings.NewReader(input), importer.Options{})
	require.NoError(t, err)
	assert.Zero(t, second.MerchantsCreated)
	assert.Equal(t, first.Transactions[0].MerchantID, second.Transactions[0].MerchantID)
	assert.Equal(t, 4, h.count(t))

	merchants, err := h.merchants.List(ctx)
	require.NoError(t, err)
	require.Len(t, merchants, 1)
	assert.Equal(t, prefix, merchants[0].Name)
}

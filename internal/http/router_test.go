package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/coinquest/internal/auth"
	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/export"
	coinhttp "github.com/MrJamesThe3rd/coinquest/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/coinquest/internal/http/budget"
	categoryHandler "github.com/MrJamesThe3rd/coinquest/internal/http/category"
	dashboardHandler "github.com/MrJamesThe3rd/coinquest/internal/http/dashboard"
	exportHandler "github.com/MrJamesThe3rd/coinquest/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/coinquest/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/coinquest/internal/http/matching"
	merchantHandler "github.com/MrJamesThe3rd/coinquest/internal/http/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/http/session"
	txHandler "github.com/MrJamesThe3rd/coinquest/internal/http/transaction"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/memstore"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func newRouter(t *testing.T, authSvc *auth.Service) http.Handler {
	t.Helper()

	store := memstore.New()

	var (
		categories   = category.NewService(store)
		merchants    = merchant.NewService(store)
		transactions = transaction.NewService(store)
		budgets      = budget.NewService(store)
		matcher      = matching.NewService(store)
		q            = query.NewService(transactions, budgets, time.UTC)
	)

	return coinhttp.New(coinhttp.Handlers{
		Session:      session.NewHandler(authSvc, nil),
		Transactions: txHandler.NewHandler(transactions, q),
		Categories:   categoryHandler.NewHandler(categories),
		Merchants:    merchantHandler.NewHandler(merchants),
		Budgets:      budgetHandler.NewHandler(budgets, q),
		Dashboard:    dashboardHandler.NewHandler(q),
		Import:       importHandler.NewHandler(importer.NewService(categories, merchants, matcher, transactions)),
		Export:       exportHandler.NewHandler(export.NewService(q), q),
		Matching:     matchingHandler.NewHandler(matcher, merchants),
	}, coinhttp.Options{Auth: authSvc, AllowedOrigins: []string{"*"}})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

type created struct {
	ID uuid.UUID `json:"id"`
}

type txBody struct {
	ID       uuid.UUID       `json:"id"`
	Date     time.Time       `json:"date"`
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Merchant string          `json:"merchant"`
	Note     string          `json:"note"`
}

type fixture struct {
	h         http.Handler
	groceries uuid.UUID
	salary    uuid.UUID
	market    uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{h: newRouter(t, nil)}

	rec := do(t, f.h, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Groceries", "type": "expense"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.groceries = decode[created](t, rec).ID

	rec = do(t, f.h, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Salary", "type": "income"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.salary = decode[created](t, rec).ID

	rec = do(t, f.h, http.MethodPost, "/api/v1/merchants", map[string]any{"name": "Fresh Market", "category": "Supermarket"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.market = decode[created](t, rec).ID

	return f
}

func (f fixture) addTx(t *testing.T, date, typ, amount string, categoryID uuid.UUID, note string) txBody {
	t.Helper()

	rec := do(t, f.h, http.MethodPost, "/api/v1/transactions", map[string]any{
		"date":        date,
		"type":        typ,
		"amount":      amount,
		"category_id": categoryID,
		"merchant_id": f.market,
		"note":        note,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[txBody](t, rec)
}

func TestHealth(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTransactions(t *testing.T) {
	f := newFixture(t)

	weekly := f.addTx(t, "2024-03-10T12:00:00Z", "expense", "45.99", f.groceries, "weekly shop")
	f.addTx(t, "2024-03-01T09:00:00Z", "income", "2000", f.salary, "")
	f.addTx(t, "2024-02-20T09:00:00Z", "expense", "10", f.groceries, "")

	assert.Equal(t, "Groceries", weekly.Category)
	assert.Equal(t, "Fresh Market", weekly.Merchant)
	assert.True(t, decimal.RequireFromString("45.99").Equal(weekly.Amount))

	t.Run("list filters and sorts", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
			notes []string
		}{
			{"all newest first", "", []string{"weekly shop", "", ""}},
			{"search", "?q=WEEKLY", []string{"weekly shop"}},
			{"type", "?type=income&sort=asc", []string{""}},
			{"date range", "?start_date=2024-03-01&end_date=2024-03-31&sort=asc", []string{"", "weekly shop"}},
			{"category", "?category=" + f.salary.String(), []string{""}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := do(t, f.h, http.MethodGet, "/api/v1/transactions"+tt.query, nil)
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

				txs := decode[[]txBody](t, rec)

				notes := make([]string, len(txs))
				for i, tx := range txs {
					notes[i] = tx.Note
				}

				assert.Equal(t, tt.notes, notes)
			})
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/transactions?type=transfer", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, f.h, http.MethodGet, "/api/v1/transactions?start_date=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("recent", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/transactions/recent?limit=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		txs := decode[[]txBody](t, rec)
		require.Len(t, txs, 1)
		assert.Equal(t, weekly.ID, txs[0].ID)
	})

	t.Run("patch keeps other fields", func(t *testing.T) {
		rec := do(t, f.h, http.MethodPatch, "/api/v1/transactions/"+weekly.ID.String(), map[string]any{"note": "big shop"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[txBody](t, rec)
		assert.Equal(t, "big shop", got.Note)
		assert.True(t, decimal.RequireFromString("45.99").Equal(got.Amount))
	})

	t.Run("errors", func(t *testing.T) {
		rec := do(t, f.h, http.MethodPost, "/api/v1/transactions", map[string]any{
			"date": "2024-03-10T12:00:00Z", "type": "expense", "amount": "-1",
			"category_id": f.groceries, "merchant_id": f.market,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, f.h, http.MethodPost, "/api/v1/transactions", map[string]any{
			"date": "2024-03-10T12:00:00Z", "type": "expense", "amount": "1",
			"category_id": uuid.New(), "merchant_id": f.market,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = do(t, f.h, http.MethodGet, "/api/v1/transactions/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, f.h, http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(t, f.h, http.MethodDelete, "/api/v1/transactions/"+weekly.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(t, f.h, http.MethodDelete, "/api/v1/transactions/"+weekly.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	rec := do(t, f.h, http.MethodGet, "/api/v1/categories?type=income", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]struct {
		Name string `json:"name"`
	}](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Salary", list[0].Name)

	rec = do(t, f.h, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Salary", "type": "income"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, f.h, http.MethodPatch, "/api/v1/categories/"+f.groceries.String(), map[string]any{"type": "income"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, f.h, http.MethodPut, "/api/v1/categories/"+f.groceries.String(), map[string]any{"name": "Food"})
	require.Equal(t, http.StatusOK, rec.Code)

	f.addTx(t, "2024-03-10T12:00:00Z", "expense", "5", f.groceries, "")

	rec = do(t, f.h, http.MethodDelete, "/api/v1/categories/"+f.groceries.String(), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBudgetsAndDashboard(t *testing.T) {
	f := newFixture(t)

	f.addTx(t, "2024-03-10T12:00:00Z", "expense", "80", f.groceries, "")
	f.addTx(t, "2024-02-10T12:00:00Z", "expense", "40", f.groceries, "")
	f.addTx(t, "2024-03-01T09:00:00Z", "income", "1000", f.salary, "")

	body := map[string]any{"category_id": f.groceries, "amount": "100", "month": 3, "year": 2024}

	rec := do(t, f.h, http.MethodPost, "/api/v1/budgets", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, f.h, http.MethodPost, "/api/v1/budgets", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, f.h, http.MethodPost, "/api/v1/budgets", map[string]any{"category_id": f.groceries, "amount": "100", "month": 13, "year": 2024})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	t.Run("overview", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/budgets/overview?month=3&year=2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		lines := decode[[]struct {
			Spent    decimal.Decimal `json:"spent"`
			Progress struct {
				Percentage float64 `json:"percentage"`
				Status     string  `json:"status"`
			} `json:"progress"`
		}](t, rec)
		require.Len(t, lines, 1)
		assert.True(t, decimal.NewFromInt(80).Equal(lines[0].Spent))
		assert.InDelta(t, 80.0, lines[0].Progress.Percentage, 0.001)
		assert.Equal(t, "near-limit", lines[0].Progress.Status)
	})

	t.Run("monthly", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/dashboard/monthly?month=3&year=2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		s := decode[struct {
			Income   decimal.Decimal `json:"income"`
			Expenses decimal.Decimal `json:"expenses"`
			Balance  decimal.Decimal `json:"balance"`
		}](t, rec)
		assert.True(t, decimal.NewFromInt(1000).Equal(s.Income))
		assert.True(t, decimal.NewFromInt(80).Equal(s.Expenses))
		assert.True(t, decimal.NewFromInt(920).Equal(s.Balance))
	})

	t.Run("spending", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/dashboard/spending?month=3&year=2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		cs := decode[[]struct {
			Category string  `json:"category"`
			Change   float64 `json:"change"`
		}](t, rec)
		require.Len(t, cs, 1)
		assert.Equal(t, "Groceries", cs[0].Category)
		assert.InDelta(t, 100.0, cs[0].Change, 0.001)
	})

	t.Run("progress", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/dashboard/progress?used=95&total=100", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"percentage":95,"status":"over-budget"}`, rec.Body.String())

		rec = do(t, f.h, http.MethodGet, "/api/v1/dashboard/progress?used=abc&total=100", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("combined", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/dashboard?month=3&year=2024&recent=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		d := decode[struct {
			Recent []txBody `json:"recent"`
		}](t, rec)
		assert.Len(t, d.Recent, 2)
	})

	t.Run("invalid month", func(t *testing.T) {
		rec := do(t, f.h, http.MethodGet, "/api/v1/dashboard/monthly?month=0&year=2024", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestImportExport(t *testing.T) {
	f := newFixture(t)

	csvData := "date,type,amount,category,merchant,note\n" +
		"2024-03-05,expense,12.50,Groceries,Corner Shop,milk\n" +
		"2024-03-06,income,100,Salary,Fresh Market,\n"

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("format", "csv"))

	fw, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)

	_, err = io.WriteString(fw, csvData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[struct {
		Imported         int `json:"imported"`
		MerchantsCreated int `json:"merchants_created"`
	}](t, rec)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.MerchantsCreated)

	rec = do(t, f.h, http.MethodGet, "/api/v1/export?sort=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "coinquest_")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,type,amount,category,merchant,note", lines[0])
	assert.Contains(t, lines[1], "expense,12.50,Groceries,Corner Shop,milk")

	rec = do(t, f.h, http.MethodGet, "/api/v1/export/summary?month=3&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "March 2024")
}

func TestMatching(t *testing.T) {
	f := newFixture(t)

	rec := do(t, f.h, http.MethodPost, "/api/v1/matching", map[string]any{"raw_pattern": "FRESH MKT", "merchant_id": f.market})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, f.h, http.MethodGet, "/api/v1/matching/suggest?name=COMPRA+FRESH+MKT+LISBOA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		MerchantID *uuid.UUID `json:"merchant_id"`
		Merchant   string     `json:"merchant"`
	}](t, rec)
	require.NotNil(t, got.MerchantID)
	assert.Equal(t, f.market, *got.MerchantID)
	assert.Equal(t, "Fresh Market", got.Merchant)

	rec = do(t, f.h, http.MethodGet, "/api/v1/matching/suggest?name=unknown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[struct {
		MerchantID *uuid.UUID `json:"merchant_id"`
	}](t, rec).MerchantID)

	rec = do(t, f.h, http.MethodPost, "/api/v1/matching", map[string]any{"raw_pattern": "X", "merchant_id": uuid.New()})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAuth(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	h := newRouter(t, auth.NewService("test-secret", "owner", hash, time.Hour))

	rec := do(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", map[string]any{"username": "owner", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", map[string]any{"username": "owner", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	token := decode[auth.Token](t, rec)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

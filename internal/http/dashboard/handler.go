package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	txHandler "github.com/MrJamesThe3rd/coinquest/internal/http/transaction"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/report"
)

const defaultRecent = 5

type Handler struct {
	query *query.Service
}

func NewHandler(q *query.Service) *Handler {
	return &Handler{query: q}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Get("/monthly", h.monthly)
	r.Get("/spending", h.spending)
	r.Get("/progress", h.progress)
}

type summaryResponse struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Balance     decimal.Decimal `json:"balance"`
	BudgetUsed  decimal.Decimal `json:"budget_used"`
	BudgetTotal decimal.Decimal `json:"budget_total"`
}

func toSummary(s report.MonthlySummary) summaryResponse {
	return summaryResponse{
		Month:       int(s.Period.Month),
		Year:        s.Period.Year,
		Income:      s.Income,
		Expenses:    s.Expenses,
		Balance:     s.Balance,
		BudgetUsed:  s.BudgetUsed,
		BudgetTotal: s.BudgetTotal,
	}
}

type spendingResponse struct {
	CategoryID          uuid.UUID       `json:"category_id"`
	Category            string          `json:"category"`
	Amount              decimal.Decimal `json:"amount"`
	PreviousMonthAmount decimal.Decimal `json:"previous_month_amount"`
	Change              float64         `json:"change"`
}

func toSpending(cs []report.CategorySpending) []spendingResponse {
	resp := make([]spendingResponse, len(cs))
	for i, c := range cs {
		resp[i] = spendingResponse{
			CategoryID:          c.CategoryID,
			Category:            c.Category,
			Amount:              c.Amount,
			PreviousMonthAmount: c.PreviousMonthAmount,
			Change:              c.Change(),
		}
	}

	return resp
}

type progressResponse struct {
	Percentage float64       `json:"percentage"`
	Status     budget.Status `json:"status"`
}

func toProgress(p budget.Progress) progressResponse {
	return progressResponse{Percentage: p.Percentage, Status: p.Status}
}

type dashboardResponse struct {
	Summary  summaryResponse    `json:"summary"`
	Progress progressResponse   `json:"progress"`
	Spending []spendingResponse `json:"spending"`
	Recent   any                `json:"recent"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	month, year, err := respond.MonthYear(r, h.query.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	recent, err := respond.Int(r, "recent")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if recent == nil {
		recent = new(defaultRecent)
	}

	d, err := h.query.Dashboard(r.Context(), month, year, *recent)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dashboardResponse{
		Summary:  toSummary(d.Summary),
		Progress: toProgress(d.Progress),
		Spending: toSpending(d.Spending),
		Recent:   txHandler.ToResponseList(d.Recent),
	})
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	month, year, err := respond.MonthYear(r, h.query.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.query.MonthlySummary(r.Context(), month, year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummary(s))
}

func (h *Handler) spending(w http.ResponseWriter, r *http.Request) {
	month, year, err := respond.MonthYear(r, h.query.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var opts report.SpendingOptions

	if s := r.URL.Query().Get("include_dormant"); s != "" {
		if opts.IncludeDormant, err = strconv.ParseBool(s); err != nil {
			respond.Error(w, r, errs.Invalid("include_dormant", "must be a boolean"))
			return
		}
	}

	cs, err := h.query.CategorySpending(r.Context(), month, year, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSpending(cs))
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	used, err := decimalParam(r, "used")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	total, err := decimalParam(r, "total")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProgress(h.query.BudgetProgress(used, total)))
}

func decimalParam(r *http.Request, name string) (decimal.Decimal, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return decimal.Zero, errs.Invalid(name, "is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errs.Invalid(name, "must be a decimal number")
	}

	return d, nil
}

package budget

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
)

type Handler struct {
	svc   *budget.Service
	query *query.Service
}

func NewHandler(svc *budget.Service, q *query.Service) *Handler {
	return &Handler{svc: svc, query: q}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/overview", h.overview)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type budgetResponse struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Category:   b.CategoryName,
		Amount:     b.Amount,
		Month:      b.Month,
		Year:       b.Year,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type createBudgetRequest struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), budget.CreateParams{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter budget.ListFilter
		err    error
	)

	if filter.Month, err = respond.Int(r, "month"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.Year, err = respond.Int(r, "year"); err != nil {
		respond.Error(w, r, err)
		return
	}

	bs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]budgetResponse, len(bs))
	for i, b := range bs {
		resp[i] = toResponse(b)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type progressResponse struct {
	Percentage float64       `json:"percentage"`
	Status     budget.Status `json:"status"`
}

type overviewLine struct {
	Budget   budgetResponse   `json:"budget"`
	Spent    decimal.Decimal  `json:"spent"`
	Progress progressResponse `json:"progress"`
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	month, year, err := respond.MonthYear(r, h.query.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	lines, err := h.query.BudgetOverview(r.Context(), month, year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]overviewLine, len(lines))
	for i, l := range lines {
		resp[i] = overviewLine{
			Budget:   toResponse(l.Budget),
			Spent:    l.Spent,
			Progress: progressResponse{Percentage: l.Progress.Percentage, Status: l.Progress.Status},
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

type updateBudgetRequest struct {
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Month      *int             `json:"month,omitempty"`
	Year       *int             `json:"year,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateBudgetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.CategoryID != nil {
		b.CategoryID = *req.CategoryID
	}

	if req.Amount != nil {
		b.Amount = *req.Amount
	}

	if req.Month != nil {
		b.Month = *req.Month
	}

	if req.Year != nil {
		b.Year = *req.Year
	}

	if err := h.svc.Update(r.Context(), b); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

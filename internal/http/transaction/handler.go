package transaction

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

const defaultRecent = 5

type Handler struct {
	svc   *transaction.Service
	query *query.Service
}

func NewHandler(svc *transaction.Service, q *query.Service) *Handler {
	return &Handler{svc: svc, query: q}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/recent", h.recent)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.replace)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Date       time.Time        `json:"date"`
	Type       transaction.Type `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	CategoryID uuid.UUID        `json:"category_id"`
	MerchantID uuid.UUID        `json:"merchant_id"`
	Note       string           `json:"note"`
}

func (req createTransactionRequest) params() transaction.CreateParams {
	return transaction.CreateParams{
		Date:       req.Date,
		Type:       req.Type,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		MerchantID: req.MerchantID,
		Note:       req.Note,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

// FilterSpec builds a transaction query from the request's query string.
func FilterSpec(r *http.Request, loc *time.Location) (transaction.FilterSpec, error) {
	q := r.URL.Query()
	spec := transaction.FilterSpec{SearchQuery: q.Get("q")}

	var err error

	if spec.StartDate, err = respond.Date(r, "start_date", loc, false); err != nil {
		return spec, err
	}

	if spec.EndDate, err = respond.Date(r, "end_date", loc, true); err != nil {
		return spec, err
	}

	if spec.Categories, err = respond.UUIDs(r, "category"); err != nil {
		return spec, err
	}

	if spec.Merchants, err = respond.UUIDs(r, "merchant"); err != nil {
		return spec, err
	}

	if s := q.Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			return spec, errs.Invalid("type", "must be one of expense income")
		}

		spec.Type = new(t)
	}

	return spec, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	spec, err := FilterSpec(r, h.query.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.query.Transactions(r.Context(), spec, transaction.ParseSortOrder(r.URL.Query().Get("sort")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	limit, err := respond.Int(r, "limit")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if limit == nil {
		limit = new(defaultRecent)
	}

	txs, err := h.query.Recent(r.Context(), *limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx := &transaction.Transaction{
		ID:         id,
		Date:       req.Date,
		Type:       req.Type,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		MerchantID: req.MerchantID,
		Note:       req.Note,
	}

	h.save(w, r, tx)
}

type updateTransactionRequest struct {
	Date       *time.Time        `json:"date,omitempty"`
	Type       *transaction.Type `json:"type,omitempty"`
	Amount     *decimal.Decimal  `json:"amount,omitempty"`
	CategoryID *uuid.UUID        `json:"category_id,omitempty"`
	MerchantID *uuid.UUID        `json:"merchant_id,omitempty"`
	Note       *string           `json:"note,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Date != nil {
		tx.Date = *req.Date
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	}

	if req.MerchantID != nil {
		tx.MerchantID = *req.MerchantID
	}

	if req.Note != nil {
		tx.Note = *req.Note
	}

	h.save(w, r, tx)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, tx *transaction.Transaction) {
	if err := h.svc.Update(r.Context(), tx); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
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

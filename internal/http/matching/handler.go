package matching

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
)

type Handler struct {
	svc       *matching.Service
	merchants *merchant.Service
}

func NewHandler(svc *matching.Service, merchants *merchant.Service) *Handler {
	return &Handler{svc: svc, merchants: merchants}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Name       string     `json:"name"`
	MerchantID *uuid.UUID `json:"merchant_id"`
	Merchant   string     `json:"merchant,omitempty"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respond.Error(w, r, errs.Invalid("name", "is required"))
		return
	}

	id, err := h.svc.Suggest(r.Context(), name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := suggestResponse{Name: name}

	if id != uuid.Nil {
		m, err := h.merchants.Get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		resp.MerchantID = &m.ID
		resp.Merchant = m.Name
	}

	respond.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	RawPattern string    `json:"raw_pattern"`
	MerchantID uuid.UUID `json:"merchant_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.MerchantID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

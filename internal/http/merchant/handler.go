package merchant

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
)

type Handler struct {
	svc *merchant.Service
}

func NewHandler(svc *merchant.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// Label is exposed as "category": the free-text kind of business, unrelated
// to transaction categories.
type merchantResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Label     string     `json:"category,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(m *merchant.Merchant) merchantResponse {
	return merchantResponse{
		ID:        m.ID,
		Name:      m.Name,
		Label:     m.Label,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type createMerchantRequest struct {
	Name  string `json:"name"`
	Label string `json:"category"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createMerchantRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := h.svc.Create(r.Context(), merchant.CreateParams{Name: req.Name, Label: req.Label})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ms, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]merchantResponse, len(ms))
	for i, m := range ms {
		resp[i] = toResponse(m)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(m))
}

type updateMerchantRequest struct {
	Name  *string `json:"name,omitempty"`
	Label *string `json:"category,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateMerchantRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Name != nil {
		m.Name = *req.Name
	}

	if req.Label != nil {
		m.Label = *req.Label
	}

	if err := h.svc.Update(r.Context(), m); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(m))
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

// Package session serves the unauthenticated endpoints: health and login.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/coinquest/internal/auth"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	auth *auth.Service
	db   Pinger
}

// NewHandler accepts a nil auth service when authentication is disabled and
// a nil pinger for the memory store.
func NewHandler(authSvc *auth.Service, db Pinger) *Handler {
	return &Handler{auth: authSvc, db: db}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/auth/login", h.login)
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}

	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respond.JSON(w, http.StatusNotFound, errorResponse{Error: "authentication is disabled"})
		return
	}

	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respond.JSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}

		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, token)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/coinquest/internal/auth"
	"github.com/MrJamesThe3rd/coinquest/internal/http/budget"
	"github.com/MrJamesThe3rd/coinquest/internal/http/category"
	"github.com/MrJamesThe3rd/coinquest/internal/http/dashboard"
	"github.com/MrJamesThe3rd/coinquest/internal/http/export"
	"github.com/MrJamesThe3rd/coinquest/internal/http/importcsv"
	"github.com/MrJamesThe3rd/coinquest/internal/http/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/http/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/http/session"
	"github.com/MrJamesThe3rd/coinquest/internal/http/transaction"
)

type Handlers struct {
	Session      *session.Handler
	Transactions *transaction.Handler
	Categories   *category.Handler
	Merchants    *merchant.Handler
	Budgets      *budget.Handler
	Dashboard    *dashboard.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
	Matching     *matching.Handler
}

type Options struct {
	// Auth guards every route except health and login. Nil disables it.
	Auth           *auth.Service
	AllowedOrigins []string
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		h.Session.Routes(r)

		r.Group(func(r chi.Router) {
			if opts.Auth != nil {
				r.Use(opts.Auth.Middleware)
			}

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Transactions.Routes(r)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Categories.Routes(r)
			})

			r.Route("/merchants", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Merchants.Routes(r)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Budgets.Routes(r)
			})

			r.Route("/dashboard", h.Dashboard.Routes)
			r.Route("/import", h.Import.Routes)
			r.Route("/export", h.Export.Routes)

			r.Route("/matching", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Matching.Routes(r)
			})
		})
	})

	return router
}

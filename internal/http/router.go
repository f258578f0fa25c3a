package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tiammomo/mamoji/internal/http/account"
	"github.com/tiammomo/mamoji/internal/http/auth"
	"github.com/tiammomo/mamoji/internal/http/budget"
	"github.com/tiammomo/mamoji/internal/http/category"
	"github.com/tiammomo/mamoji/internal/http/importcsv"
	"github.com/tiammomo/mamoji/internal/http/ledger"
	"github.com/tiammomo/mamoji/internal/http/refund"
	"github.com/tiammomo/mamoji/internal/http/report"
	"github.com/tiammomo/mamoji/internal/http/transaction"
)

type Handlers struct {
	Auth         *auth.Handler
	Accounts     *account.Handler
	Categories   *category.Handler
	Budgets      *budget.Handler
	Transactions *transaction.Handler
	Refunds      *refund.Handler
	Ledgers      *ledger.Handler
	Reports      *report.Handler
	Import       *importcsv.Handler
}

func New(authn Authenticator, allowedOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Ledger-Id"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(authn))

			r.Route("/accounts", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Accounts.Routes(r)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Categories.Routes(r)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Budgets.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Transactions.Routes(r)
			})

			r.Route("/refunds", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Refunds.Routes(r)
			})

			r.Route("/ledgers", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Ledgers.Routes(r)
			})

			r.Route("/reports", h.Reports.Routes)

			r.Route("/import", h.Import.Routes)
		})
	})

	return router
}

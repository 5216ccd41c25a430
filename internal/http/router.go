package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contaflow/contaflow/internal/http/entries"
	"github.com/contaflow/contaflow/internal/http/importcommit"
	"github.com/contaflow/contaflow/internal/http/reconciliation"
)

func New(
	importV1 *importcommit.Handler,
	reconciliationV1 *reconciliation.Handler,
	entriesV1 *entries.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Route("/import", importV1.Routes)

		r.Route("/reconciliation", reconciliationV1.Routes)

		r.Route("/entries", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			entriesV1.Routes(r)
		})
	})

	return router
}

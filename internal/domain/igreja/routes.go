package igreja

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/celulas/celulas-api/internal/middleware"
)

// Routes returns igreja router; cell creation goes through gate
func (h *Handler) Routes(gate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(middleware.Label("igrejas.me")).Get("/me", h.Minha)
	r.With(middleware.Label("igrejas.celulas.list")).Get("/me/celulas", h.ListCelulas)

	// Leaders and above
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLeader())

		r.With(middleware.Label("igrejas.membros.list")).Get("/me/membros", h.ListMembros)
		r.With(middleware.Label("igrejas.celulas.create"), gate).Post("/me/celulas", h.CreateCelula)
	})

	return r
}

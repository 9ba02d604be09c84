package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/autotag/internal/autotag"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(proc *autotag.Processor, catalog *autotag.Catalog, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(proc, catalog)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/tags", h.ListTags)
	r.Get("/tags/{tag}", h.GetTag)
	r.Get("/documents/{title}/tags", h.GetDocumentTags)

	r.Post("/process", h.Process)
	r.Post("/reconcile", h.Reconcile)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/achntj/lab/internal/recordservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *recordservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/search", h.Search)

	r.Route("/records/{source}/{sourceId}", func(r chi.Router) {
		r.Get("/", h.GetRecord)
		r.Put("/", h.PutRecord)
		r.Delete("/", h.DeleteRecord)
	})

	r.Put("/notes/{noteId}", h.PutNote)
	r.Get("/notes/{noteId}/links", h.NoteLinks)

	r.Get("/graph", h.Graph)
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

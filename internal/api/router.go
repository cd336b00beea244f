package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/zettelport/internal/index"
	"github.com/starford/zettelport/internal/storage"
)

// NewRouter creates a chi router with all preview routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(dir *storage.Dir, db index.NoteIndex, authEnabled bool, token string) chi.Router {
	h := NewHandler(dir, db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{name}", h.GetNote)
	r.Get("/search", h.Search)
	r.Get("/links/unresolved", h.Unresolved)
	r.Get("/stats", h.Stats)

	return r
}

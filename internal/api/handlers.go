package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/zettelport/internal/apperr"
	"github.com/starford/zettelport/internal/index"
	"github.com/starford/zettelport/internal/storage"
)

// Handler holds preview API route handlers.
type Handler struct {
	dir *storage.Dir
	db  index.NoteIndex
}

// NewHandler creates a new Handler over the output directory and index.
func NewHandler(dir *storage.Dir, db index.NoteIndex) *Handler {
	return &Handler{dir: dir, db: db}
}

// noteName extracts the filename from the URL, decoding percent escapes so
// titles with spaces round-trip.
func noteName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.db.ListNotes(limit, offset)
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []index.NoteRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": items,
		"total": total,
	})
}

// GetNote handles GET /notes/{name}: index row plus the persisted content.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	name := noteName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	row, err := h.db.GetNote(name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	content, err := h.dir.Read(name)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		slog.Error("read note failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"note":    row,
		"content": string(content),
	})
}

// Search handles GET /search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if hits == nil {
		hits = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

// Unresolved handles GET /links/unresolved.
func (h *Handler) Unresolved(w http.ResponseWriter, r *http.Request) {
	links, err := h.db.Unresolved()
	if err != nil {
		slog.Error("unresolved failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if links == nil {
		links = []index.Link{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"unresolved": links})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.db.Stats()
	if err != nil {
		slog.Error("stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

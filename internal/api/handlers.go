package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/achntj/lab/internal/apperr"
	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/recordservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *recordservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *recordservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pathParam returns a decoded URL parameter. Encoded slashes are allowed so
// vault note ids such as "topics%2Fplan.md" survive routing. chi routes on
// RawPath only when it is set; otherwise the parameter is already decoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func recordKey(r *http.Request) (string, string) {
	return pathParam(r, "source"), pathParam(r, "sourceId")
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Search handles GET /api/search.
//
//	@Summary		Search every record
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Query; date fragments such as 'dec 15' are expanded"
//	@Success		200	{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeError(w, "search", err, slog.String("q", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetRecord handles GET /api/records/{source}/{sourceId}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	source, sourceID := recordKey(r)
	rec, err := h.svc.GetRecord(r.Context(), source, sourceID)
	if err != nil {
		writeError(w, "get record", err, slog.String("source", source), slog.String("source_id", sourceID))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PutRecord handles PUT /api/records/{source}/{sourceId}.
//
//	@Summary		Create or replace the record of a domain entity
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordRequest	true	"Record fields"
//	@Success		200		{object}	models.Record
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{source}/{sourceId} [put]
func (h *Handler) PutRecord(w http.ResponseWriter, r *http.Request) {
	source, sourceID := recordKey(r)

	var req RecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "put record", invalid("%v", err))
		return
	}
	if source == models.SourceNote {
		// Notes go through PUT /notes so their mentions stay in sync.
		writeError(w, "put record", invalid("use /notes/{noteId} for notes"))
		return
	}

	rec, err := h.svc.UpsertRecord(r.Context(), req.input(source, sourceID))
	if err != nil {
		writeError(w, "put record", err, slog.String("source", source), slog.String("source_id", sourceID))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord handles DELETE /api/records/{source}/{sourceId}.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	source, sourceID := recordKey(r)
	if err := h.svc.DeleteRecord(r.Context(), source, sourceID); err != nil {
		writeError(w, "delete record", err, slog.String("source", source), slog.String("source_id", sourceID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutNote handles PUT /api/notes/{noteId}.
//
//	@Summary		Save a note and rebuild its [[mention]] links
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note"
//	@Success		200		{object}	models.NoteLinks
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{noteId} [put]
func (h *Handler) PutNote(w http.ResponseWriter, r *http.Request) {
	noteID := pathParam(r, "noteId")

	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "put note", invalid("%v", err))
		return
	}

	links, err := h.svc.SaveNote(r.Context(), models.Note{ID: noteID, Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(w, "put note", err, slog.String("note_id", noteID))
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// NoteLinks handles GET /api/notes/{noteId}/links.
func (h *Handler) NoteLinks(w http.ResponseWriter, r *http.Request) {
	noteID := pathParam(r, "noteId")
	links, err := h.svc.NoteLinks(r.Context(), noteID)
	if err != nil {
		writeError(w, "note links", err, slog.String("note_id", noteID))
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Export handles GET /api/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="lab-export.json"`)
	writeJSON(w, http.StatusOK, exp)
}

// Import handles POST /api/import.
//
//	@Summary		Load an export, skipping records and edges that already exist
//	@Tags			export
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Export	true	"Export payload"
//	@Success		200		{object}	models.ImportSummary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var exp models.Export
	if err := decodeJSON(w, r, &exp); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	sum, err := h.svc.Import(r.Context(), &exp)
	if err != nil {
		writeError(w, "import", err, slog.Int("records", len(exp.Records)))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	proc    *autotag.Processor
	catalog *autotag.Catalog
}

// NewHandler creates a new Handler.
func NewHandler(proc *autotag.Processor, catalog *autotag.Catalog) *Handler {
	return &Handler{proc: proc, catalog: catalog}
}

// urlParam returns a decoded path parameter. Encoded slashes from clients
// (e.g. a%2Fb) are unescaped.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidTag), errors.Is(err, apperr.ErrInvalidTitle),
		errors.Is(err, apperr.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrMalformed):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(msg, append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListTags handles GET /api/tags.
//
//	@Summary		List tags with document counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, _ *http.Request) {
	counts, err := h.catalog.TagCounts()
	if err != nil {
		writeError(w, err, "list tags failed")
		return
	}
	if counts == nil {
		counts = []index.TagCount{}
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: counts})
}

// GetTag handles GET /api/tags/{tag}.
//
//	@Summary		Get the documents linked from a tag
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag identifier"
//	@Success		200	{object}	TagResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/{tag} [get]
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag := urlParam(r, "tag")
	links, err := h.catalog.Backlinks(tag)
	if err != nil {
		writeError(w, err, "get tag failed", slog.String("tag", tag))
		return
	}
	if links == nil {
		links = []string{}
	}
	writeJSON(w, http.StatusOK, TagResponse{Tag: tag, Backlinks: links})
}

// GetDocumentTags handles GET /api/documents/{title}/tags.
//
//	@Summary		Get the tags of a document
//	@Tags			documents
//	@Produce		json
//	@Param			title	path		string	true	"Document title"
//	@Success		200		{object}	DocumentTagsResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{title}/tags [get]
func (h *Handler) GetDocumentTags(w http.ResponseWriter, r *http.Request) {
	title := urlParam(r, "title")
	tags, err := h.catalog.DocumentTags(title)
	if err != nil {
		writeError(w, err, "get document tags failed", slog.String("title", title))
		return
	}
	writeJSON(w, http.StatusOK, DocumentTagsResponse{Title: title, Tags: tags})
}

// Process handles POST /api/process.
//
//	@Summary		Extract keywords from a document and sync its backlinks
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProcessRequest	true	"Document to process"
//	@Success		200		{object}	ProcessResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/process [post]
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.proc.ProcessFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, err, "process failed", slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reconcile handles POST /api/reconcile.
//
//	@Summary		Repair tag documents from the keyword snapshots
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	ReconcileResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reconcile [post]
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	reports, err := h.proc.Reconcile(r.Context())
	if err != nil {
		writeError(w, err, "reconcile failed")
		return
	}
	if reports == nil {
		reports = []*autotag.Report{}
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{Reports: reports})
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

func docID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List stored and open documents
//	@Tags			documents
//	@Produce		json
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: len(items)})
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary		Get the record, selection and checksum of a document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	DocumentView
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	v, err := h.svc.View(r.Context(), id)
	if err != nil {
		writeError(w, "get document", id, err)
		return
	}
	if v.Checksum != "" {
		w.Header().Set("ETag", checksum.ETag(v.Checksum))
	}
	writeJSON(w, http.StatusOK, v)
}

// GetText handles GET /api/documents/{id}/text.
//
//	@Summary		Get the plain text of a document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	TextResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/text [get]
func (h *Handler) GetText(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	text, err := h.svc.PlainText(r.Context(), id)
	if err != nil {
		writeError(w, "get text", id, err)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{ID: id, Text: text})
}

// Input handles POST /api/documents/{id}/input.
//
//	@Summary		Type characters at the caret, applying shorthand
//	@Tags			editing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			body	body		InputRequest	true	"Characters to type"
//	@Success		200		{object}	InputResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/input [post]
func (h *Handler) Input(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	var req InputRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Chars == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("chars is required"))
		return
	}
	v, claimed, err := h.svc.Input(r.Context(), id, req.Chars)
	if err != nil {
		writeError(w, "input", id, err)
		return
	}
	writeJSON(w, http.StatusOK, InputResponse{DocumentView: v, Claimed: claimed})
}

// Command handles POST /api/documents/{id}/commands.
//
//	@Summary		Run a named key command
//	@Tags			editing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			body	body		CommandRequest	true	"Command"
//	@Success		200		{object}	DocumentView
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/commands [post]
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	var req CommandRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Command == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("command is required"))
		return
	}
	v, err := h.svc.Command(r.Context(), id, req.Command)
	if err != nil {
		writeError(w, "command", id, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Select handles PUT /api/documents/{id}/selection.
//
//	@Summary		Replace the selection
//	@Tags			editing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Document ID"
//	@Param			body	body		SelectionRequest	true	"Selection"
//	@Success		200		{object}	DocumentView
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/selection [put]
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	var req SelectionRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.FocusKey == "" {
		req.FocusKey = req.AnchorKey
	}
	v, err := h.svc.Select(r.Context(), id, req.Selection())
	if err != nil {
		writeError(w, "select", id, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Save handles POST /api/documents/{id}/save.
//
//	@Summary		Save a document with optimistic concurrency
//	@Tags			documents
//	@Produce		json
//	@Param			id			path		string	true	"Document ID"
//	@Param			If-Match	header		string	false	"SHA-256 checksum of the stored document"
//	@Success		200			{object}	SaveResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	ifMatch := checksum.FromETag(r.Header.Get("If-Match"))
	sum, err := h.svc.Save(r.Context(), id, ifMatch)
	if err != nil {
		writeError(w, "save", id, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(sum))
	writeJSON(w, http.StatusOK, SaveResponse{ID: id, Checksum: sum})
}

// DeleteDocument handles DELETE /api/documents/{id}.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			id	path	string	true	"Document ID"
//	@Success		204	"Document deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete document", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shorthand handles GET /api/shorthand.
//
//	@Summary		Describe the shorthand triggers and key commands
//	@Tags			editing
//	@Produce		json
//	@Success		200	{object}	ShorthandResponse
//	@Security		BearerAuth
//	@Router			/shorthand [get]
func (h *Handler) Shorthand(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ShorthandResponse{
		Triggers: h.svc.Shorthand(),
		Commands: docservice.Commands(),
	})
}

package api

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/matzehuels/treeline/pkg/errors"
	"github.com/matzehuels/treeline/pkg/pipeline"
	"github.com/matzehuels/treeline/pkg/store"
)

// documentRequest is the body of POST /v1/documents.
type documentRequest struct {
	Name    string `json:"name"`
	Format  string `json:"format,omitempty"`
	Content string `json:"content"`
}

// documentView is the wire shape of a stored document. Content is a
// string so responses stay readable; the store's raw bytes would render
// as base64.
type documentView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Format    string     `json:"format"`
	Content   string     `json:"content,omitempty"`
	RootTag   string     `json:"root_tag,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// documentListResponse is the body of GET /v1/documents. Listings omit
// content; GET /v1/documents/{id} returns it.
type documentListResponse struct {
	Documents []documentView `json:"documents"`
	Count     int            `json:"count"`
}

func viewOf(doc *store.Document, includeContent bool) documentView {
	v := documentView{
		ID:        doc.ID,
		Name:      doc.Name,
		Format:    doc.Format,
		RootTag:   doc.RootTag,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if includeContent {
		v.Content = string(doc.Content)
	}
	if !doc.ExpiresAt.IsZero() {
		t := doc.ExpiresAt
		v.ExpiresAt = &t
	}
	return v
}

func (s *Server) handleDocumentCreate(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := apperrors.ValidateDocumentName(req.Name); err != nil {
		writeError(w, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.DefaultFormat
	} else if err := apperrors.ValidateFormat(req.Format); err != nil {
		writeError(w, err)
		return
	}
	if req.Content == "" {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "content cannot be empty"))
		return
	}

	// Content must parse and decode cleanly before it is stored.
	result, err := s.runner.Validate(r.Context(), []byte(req.Content), pipeline.Options{
		From:     req.Format,
		Registry: s.registry,
	})
	if err != nil {
		writeError(w, fromPipeline(err))
		return
	}

	doc := store.New(req.Name, req.Format, []byte(req.Content), s.docTTL)
	if root := result.Stream.First(); root != nil {
		doc.RootTag = root.Tag
	}

	if err := s.store.Put(r.Context(), doc); err != nil {
		if stderrors.Is(err, store.ErrDuplicateName) {
			writeError(w, apperrors.New(apperrors.ErrCodeDuplicateName, "document name %q already exists", req.Name))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "store document"))
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(doc, true))
}

func (s *Server) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	var filter store.ListFilter

	q := r.URL.Query()
	filter.Name = q.Get("name")
	if tag := q.Get("tag"); tag != "" {
		if err := apperrors.ValidateTag(tag); err != nil {
			writeError(w, err)
			return
		}
		filter.RootTag = tag
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	docs, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "list documents"))
		return
	}

	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, viewOf(doc, false))
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: views, Count: len(views)})
}

func (s *Server) handleDocumentGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "fetch document"))
		return
	}
	if doc == nil {
		writeError(w, apperrors.New(apperrors.ErrCodeDocumentNotFound, "document %s not found", id))
		return
	}

	writeJSON(w, http.StatusOK, viewOf(doc, true))
}

func (s *Server) handleDocumentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.Delete(r.Context(), id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			writeError(w, apperrors.New(apperrors.ErrCodeDocumentNotFound, "document %s not found", id))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "delete document"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

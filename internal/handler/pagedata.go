package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/service"
)

// PageDataHandler serves the per-page JSON documents.
type PageDataHandler struct {
	pages  *service.PageDataService
	logger *slog.Logger
}

func NewPageDataHandler(pages *service.PageDataService, logger *slog.Logger) *PageDataHandler {
	return &PageDataHandler{pages: pages, logger: logger}
}

func (h *PageDataHandler) Get(w http.ResponseWriter, r *http.Request) {
	pd, err := h.pages.Get(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pd)
}

func (h *PageDataHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, h.logger, err)
		return
	}

	pd, err := h.pages.Create(r.Context(), principal, chi.URLParam(r, "page"), data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, pd)
}

func (h *PageDataHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, h.logger, err)
		return
	}

	pd, err := h.pages.Update(r.Context(), principal, chi.URLParam(r, "page"), data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pd)
}

func (h *PageDataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.pages.Delete(r.Context(), principal, chi.URLParam(r, "page")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

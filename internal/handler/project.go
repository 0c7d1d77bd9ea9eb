package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/service"
)

// ProjectHandler serves the portfolio projects. Reads are public so the
// frontend can render without a session; writes sit behind RequireAuth.
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link"`
	IsFeatured  bool     `json:"isFeatured"`
	ImageID     string   `json:"imageId"`
}

func (req projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Link:        req.Link,
		IsFeatured:  req.IsFeatured,
		ImageID:     req.ImageID,
	}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	project, err := h.projects.Create(r.Context(), principal, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	project, err := h.projects.Update(r.Context(), principal, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.projects.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

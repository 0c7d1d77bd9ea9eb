package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/service"
)

// FileHandler serves file uploads and downloads. Downloads and the listing
// are public so the frontend can reference uploaded assets; uploads,
// renames, and deletes sit behind RequireAdmin.
type FileHandler struct {
	files    *service.FileService
	maxBytes int64
	logger   *slog.Logger
}

func NewFileHandler(files *service.FileService, maxBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, maxBytes: maxBytes, logger: logger}
}

// Upload accepts a multipart form with a "file" part at
// /files/upload/{fileType}. The request body is capped at maxBytes.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	part, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, apperror.ValidationFailed("file", "file exceeds the upload size limit"))
			return
		}
		writeError(w, h.logger, apperror.ValidationFailed("file", "multipart form with a file part is required"))
		return
	}
	defer part.Close()

	file, err := h.files.Upload(r.Context(), chi.URLParam(r, "fileType"), header.Filename, part)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// Get streams the stored blob. With ?attachment=true the response asks the
// browser to download under the file's display name rather than render it.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, path, err := h.files.Blob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if r.URL.Query().Get("attachment") == "true" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	}
	http.ServeFile(w, r, path)
}

type renameFileRequest struct {
	Name string `json:"name"`
}

// Update changes the file's display name.
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req renameFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, err := h.files.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.files.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

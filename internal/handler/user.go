package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/repository"
	"github.com/sakif/portfolio-backend/internal/service"
)

// UserHandler serves account management. All routes sit behind
// RequireAuth; per-account authorization happens in the service.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// listOptions reads limit/offset query parameters, ignoring junk.
func listOptions(r *http.Request) repository.ListOptions {
	var opts repository.ListOptions
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		opts.Offset = v
	}
	return opts
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	users, err := h.users.List(r.Context(), principal, listOptions(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Me returns the authenticated account without a second lookup.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, principal)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	user, err := h.users.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), principal, chi.URLParam(r, "id"), req.Username, req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	err := h.users.ChangePassword(r.Context(), principal, chi.URLParam(r, "id"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

func (h *UserHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req setAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.SetAdmin(r.Context(), principal, chi.URLParam(r, "id"), req.IsAdmin)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.users.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

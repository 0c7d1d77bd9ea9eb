package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler serves registration and login, plus the optional GitHub
// OAuth flow when a provider is configured.
type AuthHandler struct {
	auth   *service.AuthService
	github *auth.GitHubProvider
	logger *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, github: github, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates an account from a JSON body and returns it with 201.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login authenticates HTTP basic credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("basic auth credentials required"))
		return
	}

	res, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, User: res.User})
}

// GitHubLogin redirects the browser to GitHub's consent page. A random
// state value is pinned in a short-lived cookie and checked on callback.
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// GitHubCallback completes the OAuth flow and returns a bearer token for
// the linked (or newly created) account.
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, h.logger, apperror.Unauthorized("oauth state mismatch"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.logger, apperror.ValidationFailed("code", "authorization code is required"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github exchange failed", "error", err.Error())
		writeError(w, h.logger, apperror.Unauthorized("github authorization failed"))
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, User: res.User})
}

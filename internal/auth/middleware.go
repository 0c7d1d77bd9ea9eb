package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
)

// Gate failures that are not token failures: no credential was presented at
// all, or the token's subject no longer exists.
var (
	ErrMissingCredential = errors.New("auth: missing bearer credential")
	ErrPrincipalNotFound = errors.New("auth: principal no longer exists")
)

// UserResolver is the account lookup the authorization gate needs. It is
// satisfied by repository.UserRepository; the gate re-resolves the account
// on every request because a valid token may outlive its account.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// contextKey is unexported so only this package can read or write the
// principal in a request context.
type contextKey string

const (
	principalKey contextKey = "principal"
	tokenKey     contextKey = "token"
)

// RequireAuth returns middleware that admits only requests carrying a valid
// bearer token for a still-existing account. The resolved principal is
// stored in the request context for PrincipalFromContext.
func RequireAuth(tokens *TokenService, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return requirePrincipal(tokens, users, logger, false)
}

// RequireAdmin is RequireAuth plus an administrator check. The admin check
// runs only after the principal has been resolved, so a non-admin with a
// valid token gets 403, never 401.
func RequireAdmin(tokens *TokenService, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return requirePrincipal(tokens, users, logger, true)
}

func requirePrincipal(tokens *TokenService, users UserResolver, logger *slog.Logger, requireAdmin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := bearerToken(r)
			if err != nil {
				writeGateError(w, http.StatusUnauthorized, "authorization header with bearer token required")
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				writeGateError(w, http.StatusUnauthorized, gateMessage(err))
				return
			}

			// A token may be valid while its account is gone; that case is
			// reported distinctly from an invalid token.
			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					writeGateError(w, http.StatusUnauthorized, "user not found")
					return
				}
				logger.Error("auth: resolving principal",
					slog.String("userID", claims.Subject),
					slog.String("error", err.Error()),
				)
				writeGateError(w, http.StatusInternalServerError, "an internal error occurred")
				return
			}

			if requireAdmin && !user.IsAdmin {
				writeGateError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			ctx = context.WithValue(ctx, tokenKey, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the resolved account for the request.
// On any RequireAuth/RequireAdmin route it returns (user, true).
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalKey).(*model.User)
	return user, ok && user != nil
}

// TokenFromContext returns the raw bearer token the request authenticated
// with.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}

// gateMessage maps a token validation error to a client-facing message.
func gateMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}

// writeGateError writes the same JSON error shape the handler layer uses.
// The middleware cannot depend on the handler package (the dependency runs
// the other way), so it carries its own small writer.
func writeGateError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	errType := "unauthorized"
	switch status {
	case http.StatusForbidden:
		errType = "forbidden"
	case http.StatusInternalServerError:
		errType = "internal_error"
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errType,
		"message": message,
	})
}

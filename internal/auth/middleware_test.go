package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
)

// fakeResolver looks up users from an in-memory map, standing in for the
// repository in gate tests.
type fakeResolver struct {
	users map[string]*model.User
}

func (f *fakeResolver) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperror.NotFound("user", id)
}

func newGateFixture(t *testing.T) (*TokenService, *fakeResolver) {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	resolver := &fakeResolver{users: map[string]*model.User{
		"user-1": {ID: "user-1", Username: "alice"},
		"adm-1":  {ID: "adm-1", Username: "root", IsAdmin: true},
	}}
	return ts, resolver
}

// okHandler records the principal the gate resolved.
func okHandler(t *testing.T, got **model.User) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Error("PrincipalFromContext() returned no principal on a protected route")
		}
		*got = user
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts, resolver := newGateFixture(t)
	var principal *model.User
	handler := RequireAuth(ts, resolver, discardLogger())(okHandler(t, &principal))

	token, _ := ts.Issue("user-1", "alice")
	rec := doRequest(handler, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" {
		t.Fatalf("principal = %+v, want user-1", principal)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts, resolver := newGateFixture(t)
	handler := RequireAuth(ts, resolver, discardLogger())(http.NotFoundHandler())

	for name, header := range map[string]string{
		"no header":      "",
		"not bearer":     "Basic YWxpY2U6cHc=",
		"empty bearer":   "Bearer ",
		"missing scheme": "some-raw-token",
	} {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(handler, header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts, resolver := newGateFixture(t)
	handler := RequireAuth(ts, resolver, discardLogger())(http.NotFoundHandler())

	token, _ := ts.IssueWithTTL("user-1", "alice", -1*time.Second)
	rec := doRequest(handler, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["message"] != "token expired" {
		t.Errorf("message = %q, want %q", body["message"], "token expired")
	}
}

func TestRequireAuth_DeletedAccount(t *testing.T) {
	ts, resolver := newGateFixture(t)
	handler := RequireAuth(ts, resolver, discardLogger())(http.NotFoundHandler())

	// Token subject that no longer resolves to an account. Must be reported
	// distinctly from an invalid token.
	token, _ := ts.Issue("user-gone", "ghost")
	rec := doRequest(handler, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["message"] != "user not found" {
		t.Errorf("message = %q, want %q", body["message"], "user not found")
	}
}

func TestRequireAdmin_NonAdminPrincipal(t *testing.T) {
	ts, resolver := newGateFixture(t)
	handler := RequireAdmin(ts, resolver, discardLogger())(http.NotFoundHandler())

	token, _ := ts.Issue("user-1", "alice")
	rec := doRequest(handler, "Bearer "+token)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAdmin_AdminPrincipal(t *testing.T) {
	ts, resolver := newGateFixture(t)
	var principal *model.User
	handler := RequireAdmin(ts, resolver, discardLogger())(okHandler(t, &principal))

	token, _ := ts.Issue("adm-1", "root")
	rec := doRequest(handler, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if principal == nil || !principal.IsAdmin {
		t.Fatalf("principal = %+v, want admin adm-1", principal)
	}
}

func TestTokenFromContext(t *testing.T) {
	ts, resolver := newGateFixture(t)
	var gotToken string
	handler := RequireAuth(ts, resolver, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken, _ = TokenFromContext(r.Context())
	}))

	token, _ := ts.Issue("user-1", "alice")
	doRequest(handler, "Bearer "+token)

	if gotToken != token {
		t.Errorf("TokenFromContext() = %q, want the presented token", gotToken)
	}
}

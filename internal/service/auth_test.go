package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/repository/sqlite"
)

// testEnv wires the services against an in-memory database with cheap
// argon2 parameters, so tests exercise the real stack end to end.
type testEnv struct {
	db     *sqlite.DB
	hasher *auth.Hasher
	tokens *auth.TokenService
	auth   *AuthService
	users  *UserService
}

func newTestEnv(t *testing.T, distinctErrors bool) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hasher := auth.NewHasher(auth.HashParams{
		SaltLength: 16,
		Time:       1,
		Memory:     8 * 1024,
		Threads:    1,
		KeyLength:  32,
	}, auth.DefaultPolicy())

	tokens, err := auth.NewTokenService("test-secret-test-secret", time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		db:     db,
		hasher: hasher,
		tokens: tokens,
		auth:   NewAuthService(db, hasher, tokens, logger, distinctErrors),
		users:  NewUserService(db, hasher, logger),
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		field    string
	}{
		{"short username", "abc", "", "Valid123!", "username"},
		{"bad email", "sakif", "not-an-email", "Valid123!", "email"},
		{"empty password", "sakif", "", "", "password"},
		{"weak password", "sakif", "", "alllowercase", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "sakif", "", "Valid123!")
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, "sakif", "", "Other123!")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "sakif", "sakif@example.com", "Valid123!")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.Nil(t, user.LastLogin)

	res, err := env.auth.Login(ctx, "sakif", "Valid123!")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.User.ID)
	require.NotNil(t, res.User.LastLogin)

	// The issued token validates and carries the account identity.
	claims, err := env.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "sakif", claims.Username)

	// last_login persisted, not just set on the returned value.
	stored, err := env.db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginUnifiedErrors(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "sakif", "", "Valid123!")
	require.NoError(t, err)

	// Wrong password and unknown user must be indistinguishable.
	_, err = env.auth.Login(ctx, "sakif", "Wrong123!")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")

	_, err = env.auth.Login(ctx, "nobody", "Valid123!")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLoginDistinctErrors(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "sakif", "", "Valid123!")
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "nobody", "Valid123!")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "user not found")

	_, err = env.auth.Login(ctx, "sakif", "Wrong123!")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid password")
}

func TestLoginOAuthOnlyAccountRejectsPassword(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	res, err := env.auth.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID:    42,
		Login: "ghuser",
		Email: "gh@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	// No password credential exists, so any password must fail.
	_, err = env.auth.Login(ctx, "ghuser", "Valid123!")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGitHubLoginLinksExistingAccount(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	first, err := env.auth.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 7, Login: "octo"})
	require.NoError(t, err)

	second, err := env.auth.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 7, Login: "octo-renamed"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestGitHubLoginUsernameCollision(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "octo", "", "Valid123!")
	require.NoError(t, err)

	res, err := env.auth.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 7, Login: "octo"})
	require.NoError(t, err)
	assert.Equal(t, "octo-gh7", res.User.Username)
}

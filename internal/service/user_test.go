package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

// seedUser registers an account and optionally promotes it directly in the
// repository, since no service path grants the first admin.
func seedUser(t *testing.T, env *testEnv, username string, admin bool) *model.User {
	t.Helper()
	ctx := context.Background()

	user, err := env.auth.Register(ctx, username, "", "Valid123!")
	require.NoError(t, err)
	if admin {
		user.IsAdmin = true
		require.NoError(t, env.db.UpdateUser(ctx, user))
	}
	return user
}

func TestListUsersAdminOnly(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	admin := seedUser(t, env, "admin", true)
	regular := seedUser(t, env, "regular", false)

	_, err := env.users.List(ctx, regular, repository.ListOptions{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	users, err := env.users.List(ctx, admin, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	admin := seedUser(t, env, "admin", true)
	alice := seedUser(t, env, "alice", false)
	bob := seedUser(t, env, "bobby", false)

	_, err := env.users.Get(ctx, alice, alice.ID)
	assert.NoError(t, err)

	_, err = env.users.Get(ctx, alice, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.users.Get(ctx, admin, bob.ID)
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := seedUser(t, env, "alice", false)

	updated, err := env.users.UpdateProfile(ctx, alice, alice.ID, "alice2", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = env.users.UpdateProfile(ctx, alice, alice.ID, "ab", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.users.UpdateProfile(ctx, alice, alice.ID, "", "nope")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := seedUser(t, env, "alice", false)

	err := env.users.ChangePassword(ctx, alice, alice.ID, "Wrong123!", "Fresh123!")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = env.users.ChangePassword(ctx, alice, alice.ID, "Valid123!", "Fresh123!")
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "alice", "Valid123!")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = env.auth.Login(ctx, "alice", "Fresh123!")
	assert.NoError(t, err)
}

func TestChangePasswordAdminReset(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	admin := seedUser(t, env, "admin", true)
	alice := seedUser(t, env, "alice", false)

	// Admins reset without knowing the current password.
	err := env.users.ChangePassword(ctx, admin, alice.ID, "", "Fresh123!")
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "alice", "Fresh123!")
	assert.NoError(t, err)
}

func TestChangePasswordEnforcesPolicy(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := seedUser(t, env, "alice", false)

	err := env.users.ChangePassword(ctx, alice, alice.ID, "Valid123!", "weak")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSetAdmin(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	admin := seedUser(t, env, "admin", true)
	alice := seedUser(t, env, "alice", false)

	_, err := env.users.SetAdmin(ctx, alice, alice.ID, true)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	promoted, err := env.users.SetAdmin(ctx, admin, alice.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	demoted, err := env.users.SetAdmin(ctx, admin, admin.ID, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	alice := seedUser(t, env, "alice", false)
	bob := seedUser(t, env, "bobby", false)

	assert.ErrorIs(t, env.users.Delete(ctx, alice, bob.ID), apperror.ErrForbidden)

	require.NoError(t, env.users.Delete(ctx, alice, alice.ID))
	_, err := env.db.GetUserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

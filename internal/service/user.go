package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

// UserService manages accounts after authentication. Every method takes
// the acting principal so ownership and admin rules live here, not in the
// handlers.
type UserService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher, logger *slog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, logger: logger}
}

// canAct reports whether principal may operate on the account with id:
// admins may act on anyone, everyone else only on themselves.
func canAct(principal *model.User, id string) bool {
	return principal.IsAdmin || principal.ID == id
}

func (s *UserService) List(ctx context.Context, principal *model.User, opts repository.ListOptions) ([]model.User, error) {
	if !principal.IsAdmin {
		return nil, apperror.Forbidden("insufficient permissions")
	}
	return s.users.ListUsers(ctx, opts)
}

func (s *UserService) Get(ctx context.Context, principal *model.User, id string) (*model.User, error) {
	if !canAct(principal, id) {
		return nil, apperror.Forbidden("insufficient permissions")
	}
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile changes username and email. The admin flag is untouchable
// here; see SetAdmin.
func (s *UserService) UpdateProfile(ctx context.Context, principal *model.User, id, username, email string) (*model.User, error) {
	if !canAct(principal, id) {
		return nil, apperror.Forbidden("insufficient permissions")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username = strings.TrimSpace(username); username != "" {
		if len(username) < minUsernameLength {
			return nil, apperror.ValidationFailed("username",
				fmt.Sprintf("username must be at least %d characters", minUsernameLength))
		}
		user.Username = username
	}
	if email = strings.TrimSpace(email); email != "" {
		if !emailPattern.MatchString(email) {
			return nil, apperror.ValidationFailed("email", "email address is not valid")
		}
		user.Email = email
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword sets a new password credential. A user changing their own
// password must present the current one; an admin resetting someone else's
// does not.
func (s *UserService) ChangePassword(ctx context.Context, principal *model.User, id, current, next string) error {
	if !canAct(principal, id) {
		return apperror.Forbidden("insufficient permissions")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if principal.ID == user.ID {
		artifact, err := s.users.CredentialByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		ok := false
		if artifact != "" {
			ok, err = s.hasher.Verify(current, artifact)
			if err != nil {
				return fmt.Errorf("verifying current password: %w", err)
			}
		}
		if !ok {
			return apperror.Unauthorized("current password is incorrect")
		}
	}

	newArtifact, err := s.hasher.Hash(next)
	if err != nil {
		var policyErr *auth.PolicyError
		switch {
		case errors.Is(err, auth.ErrEmptyPassword):
			return apperror.ValidationFailed("password", "password must not be empty")
		case errors.As(err, &policyErr):
			return apperror.ValidationFailed("password", policyErr.Message)
		default:
			return fmt.Errorf("hashing password: %w", err)
		}
	}

	if err := s.users.UpdateUserPassword(ctx, user.ID, newArtifact); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", user.ID, "by", principal.ID)
	return nil
}

// SetAdmin grants or revokes the admin flag. Admin-only, including on the
// caller's own account, so a lone admin demoting themselves is an explicit
// admin action.
func (s *UserService) SetAdmin(ctx context.Context, principal *model.User, id string, isAdmin bool) (*model.User, error) {
	if !principal.IsAdmin {
		return nil, apperror.Forbidden("insufficient permissions")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("admin flag changed", "user_id", user.ID, "is_admin", isAdmin, "by", principal.ID)
	return user, nil
}

// Delete removes an account. Owned projects and page data go with it.
func (s *UserService) Delete(ctx context.Context, principal *model.User, id string) error {
	if !canAct(principal, id) {
		return apperror.Forbidden("insufficient permissions")
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "by", principal.ID)
	return nil
}

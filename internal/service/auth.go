// Package service implements the application's use cases on top of the
// repository interfaces. Services validate input, enforce ownership and
// admin rules, and translate failures into the apperror taxonomy; handlers
// stay thin.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

// emailPattern is deliberately loose: something, an @, something, a dot,
// something. Deliverability is the mail server's problem.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

const minUsernameLength = 4

// AuthResult is what a successful login yields.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService registers accounts and authenticates credentials.
type AuthService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenService
	logger *slog.Logger

	// distinctErrors reproduces the legacy behavior of telling callers
	// whether the username or the password was wrong. Off by default
	// because it leaks which accounts exist.
	distinctErrors bool
}

func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenService, logger *slog.Logger, distinctErrors bool) *AuthService {
	return &AuthService{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		logger:         logger,
		distinctErrors: distinctErrors,
	}
}

// Register creates a password-credentialed account. The first account ever
// registered could be promoted by an admin later; registration itself never
// grants the admin flag.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < minUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", minUsernameLength))
	}
	if email != "" && !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}

	artifact, err := s.hasher.Hash(password)
	if err != nil {
		var policyErr *auth.PolicyError
		switch {
		case errors.Is(err, auth.ErrEmptyPassword):
			return nil, apperror.ValidationFailed("password", "password must not be empty")
		case errors.As(err, &policyErr):
			return nil, apperror.ValidationFailed("password", policyErr.Message)
		default:
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	user := &model.User{Username: username, Email: email}
	if err := s.users.CreateUser(ctx, user, artifact); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the username/password pair and issues a token. The stored
// credential for OAuth-only accounts is empty, which never verifies.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	artifact, err := s.users.CredentialByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, s.loginFailure("user not found")
		}
		return nil, err
	}

	ok := false
	if artifact != "" {
		ok, err = s.hasher.Verify(password, artifact)
		if err != nil {
			return nil, fmt.Errorf("verifying credential for %q: %w", username, err)
		}
	}
	if !ok {
		return nil, s.loginFailure("invalid password")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, user)
}

// loginFailure returns the configured flavor of authentication error:
// either the specific reason or the unified message.
func (s *AuthService) loginFailure(reason string) error {
	if s.distinctErrors {
		return apperror.Unauthorized(reason)
	}
	return apperror.Unauthorized("invalid credentials")
}

// LoginOrRegisterGitHub signs in the account linked to the GitHub identity,
// creating it on first login. Accounts created this way carry no password
// credential.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	user, err := s.users.GetUserByGitHubID(ctx, gh.ID)
	if err == nil {
		return s.finishLogin(ctx, user)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	email := gh.Email
	if email != "" && !emailPattern.MatchString(email) {
		email = ""
	}

	user = &model.User{Username: gh.Login, Email: email, GitHubID: gh.ID}
	err = s.users.CreateUser(ctx, user, "")
	if err != nil && errors.Is(err, apperror.ErrConflict) {
		// The login name is taken by an unlinked local account; derive a
		// unique one from the immutable GitHub id instead.
		user.Username = fmt.Sprintf("%s-gh%d", gh.Login, gh.ID)
		err = s.users.CreateUser(ctx, user, "")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered via github", "user_id", user.ID, "github_id", gh.ID)
	return s.finishLogin(ctx, user)
}

func (s *AuthService) finishLogin(ctx context.Context, user *model.User) (*AuthResult, error) {
	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return &AuthResult{User: user, Token: token}, nil
}

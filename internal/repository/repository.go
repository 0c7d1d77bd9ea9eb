// Package repository defines the persistence interfaces the service layer
// programs against. The sqlite subpackage implements all of them on one DB
// value, so method names carry the entity they operate on.
package repository

import (
	"context"
	"time"

	"github.com/sakif/portfolio-backend/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists accounts. The password hash never appears on
// model.User: it enters through CreateUser/UpdateUserPassword and leaves
// only through CredentialByUsername, which exists solely for verification.
type UserRepository interface {
	// CreateUser inserts a new account. Username and email uniqueness are
	// enforced atomically by the store; violations surface as
	// apperror.ErrConflict with the offending field.
	CreateUser(ctx context.Context, user *model.User, passwordHash string) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	// CredentialByUsername returns the stored password hash artifact, or
	// "" for accounts with no password credential (OAuth-only).
	CredentialByUsername(ctx context.Context, username string) (string, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
	// UpdateUser persists username, email, and the admin flag.
	UpdateUser(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// DeleteUser removes the account and cascades to owned projects and
	// page data.
	DeleteUser(ctx context.Context, id string) error
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context, opts ListOptions) ([]model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id string) error
}

type PageDataRepository interface {
	GetPageData(ctx context.Context, page string) (*model.PageData, error)
	CreatePageData(ctx context.Context, data *model.PageData) error
	UpdatePageData(ctx context.Context, data *model.PageData) error
	DeletePageData(ctx context.Context, page string) error
}

type FileRepository interface {
	CreateFile(ctx context.Context, file *model.File) error
	GetFileByID(ctx context.Context, id string) (*model.File, error)
	ListFiles(ctx context.Context, opts ListOptions) ([]model.File, error)
	UpdateFile(ctx context.Context, file *model.File) error
	DeleteFile(ctx context.Context, id string) error
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

var linkPattern = regexp.MustCompile(`^https?://`)

// ProjectInput carries the writable project fields.
type ProjectInput struct {
	Title       string
	Description string
	Tags        []string
	Link        string
	IsFeatured  bool
	ImageID     string
}

// ProjectService manages portfolio projects. Reads are public; writes
// require an authenticated principal and are recorded against it.
type ProjectService struct {
	projects repository.ProjectRepository
	files    repository.FileRepository
	logger   *slog.Logger
}

func NewProjectService(projects repository.ProjectRepository, files repository.FileRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, files: files, logger: logger}
}

func (s *ProjectService) validate(ctx context.Context, in ProjectInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperror.ValidationFailed("description", "description is required")
	}
	if len(in.Tags) == 0 {
		return apperror.ValidationFailed("tags", "at least one tag is required")
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			return apperror.ValidationFailed("tags", "tags must not be empty")
		}
		if strings.Contains(tag, ",") {
			return apperror.ValidationFailed("tags", "tags must not contain commas")
		}
	}
	if in.Link != "" && !linkPattern.MatchString(in.Link) {
		return apperror.ValidationFailed("link", "link must start with http:// or https://")
	}
	if in.ImageID != "" {
		if _, err := s.files.GetFileByID(ctx, in.ImageID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.ValidationFailed("imageId", "referenced image does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *ProjectService) Create(ctx context.Context, principal *model.User, in ProjectInput) (*model.Project, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	project := &model.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Tags:        in.Tags,
		Link:        in.Link,
		IsFeatured:  in.IsFeatured,
		ImageID:     in.ImageID,
		OwnerID:     principal.ID,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "project_id", project.ID, "owner_id", principal.ID)
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.projects.GetProjectByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, opts repository.ListOptions) ([]model.Project, error) {
	return s.projects.ListProjects(ctx, opts)
}

func (s *ProjectService) Update(ctx context.Context, principal *model.User, id string, in ProjectInput) (*model.Project, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAct(principal, project.OwnerID) {
		return nil, apperror.Forbidden("insufficient permissions")
	}

	project.Title = strings.TrimSpace(in.Title)
	project.Description = strings.TrimSpace(in.Description)
	project.Tags = in.Tags
	project.Link = in.Link
	project.IsFeatured = in.IsFeatured
	project.ImageID = in.ImageID

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, principal *model.User, id string) error {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}
	if !canAct(principal, project.OwnerID) {
		return apperror.Forbidden("insufficient permissions")
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id, "by", principal.ID)
	return nil
}

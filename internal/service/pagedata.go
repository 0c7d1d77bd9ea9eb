package service

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

// pagePattern keeps page names URL-safe, since they double as route
// parameters.
var pagePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// PageDataService manages the free-form JSON documents the frontend renders
// per page. Reads are public; writes require authentication.
type PageDataService struct {
	pages  repository.PageDataRepository
	logger *slog.Logger
}

func NewPageDataService(pages repository.PageDataRepository, logger *slog.Logger) *PageDataService {
	return &PageDataService{pages: pages, logger: logger}
}

func validatePage(page string, data map[string]any) error {
	if !pagePattern.MatchString(page) {
		return apperror.ValidationFailed("page", "page name may contain only letters, digits, hyphens, and underscores")
	}
	if len(data) == 0 {
		return apperror.ValidationFailed("data", "data must not be empty")
	}
	return nil
}

func (s *PageDataService) Get(ctx context.Context, page string) (*model.PageData, error) {
	return s.pages.GetPageData(ctx, page)
}

func (s *PageDataService) Create(ctx context.Context, principal *model.User, page string, data map[string]any) (*model.PageData, error) {
	if err := validatePage(page, data); err != nil {
		return nil, err
	}

	pd := &model.PageData{Page: page, Data: data, OwnerID: principal.ID}
	if err := s.pages.CreatePageData(ctx, pd); err != nil {
		return nil, err
	}

	s.logger.Info("page data created", "page", page, "owner_id", principal.ID)
	return pd, nil
}

func (s *PageDataService) Update(ctx context.Context, principal *model.User, page string, data map[string]any) (*model.PageData, error) {
	if err := validatePage(page, data); err != nil {
		return nil, err
	}

	existing, err := s.pages.GetPageData(ctx, page)
	if err != nil {
		return nil, err
	}
	if !canAct(principal, existing.OwnerID) {
		return nil, apperror.Forbidden("insufficient permissions")
	}

	existing.Data = data
	if err := s.pages.UpdatePageData(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *PageDataService) Delete(ctx context.Context, principal *model.User, page string) error {
	existing, err := s.pages.GetPageData(ctx, page)
	if err != nil {
		return err
	}
	if !canAct(principal, existing.OwnerID) {
		return apperror.Forbidden("insufficient permissions")
	}
	if err := s.pages.DeletePageData(ctx, page); err != nil {
		return err
	}
	s.logger.Info("page data deleted", "page", page, "by", principal.ID)
	return nil
}

package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

type CategoryServiceInterface interface {
	Create(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.CategoryRequest) (*response_models.CategoryResponse, error)
	List(ctx context.Context, workspaceID, actorID uuid.UUID) ([]response_models.CategoryResponse, error)
	Update(ctx context.Context, workspaceID, actorID, categoryID uuid.UUID, req request_models.CategoryRequest) (*response_models.CategoryResponse, error)
	Delete(ctx context.Context, workspaceID, actorID, categoryID uuid.UUID) error
}

type CategoryService struct {
	categories repositories.CategoryRepository
	guard      memberGuard
}

func NewCategoryService(categories repositories.CategoryRepository, workspaces repositories.WorkspaceRepository) CategoryServiceInterface {
	return &CategoryService{categories: categories, guard: memberGuard{workspaces: workspaces}}
}

func (s *CategoryService) slugFor(ctx context.Context, workspaceID, except uuid.UUID, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", utils.NewValidationError("name", "name must contain letters or digits")
	}
	taken, err := s.categories.SlugExists(ctx, workspaceID, base, except)
	if err != nil {
		return "", dbErr("check category slug", err)
	}
	if taken {
		return "", utils.ErrSlugTaken
	}
	return base, nil
}

func (s *CategoryService) Create(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.CategoryRequest) (*response_models.CategoryResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleEditor); err != nil {
		return nil, err
	}
	catSlug, err := s.slugFor(ctx, workspaceID, uuid.Nil, req.Name)
	if err != nil {
		return nil, err
	}
	c := &db_models.Category{
		WorkspaceID: workspaceID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        catSlug,
		Description: req.Description,
		Position:    req.Position,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if isDuplicate(err) {
			return nil, utils.ErrSlugTaken
		}
		return nil, dbErr("create category", err)
	}
	resp := response_models.NewCategoryResponse(c)
	return &resp, nil
}

func (s *CategoryService) List(ctx context.Context, workspaceID, actorID uuid.UUID) ([]response_models.CategoryResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	list, err := s.categories.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("list categories", err)
	}
	out := make([]response_models.CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, response_models.NewCategoryResponse(&list[i]))
	}
	return out, nil
}

func (s *CategoryService) Update(ctx context.Context, workspaceID, actorID, categoryID uuid.UUID, req request_models.CategoryRequest) (*response_models.CategoryResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleEditor); err != nil {
		return nil, err
	}
	c, err := s.categories.FindById(ctx, workspaceID, categoryID)
	if err != nil {
		return nil, dbErr("find category", err)
	}
	if c == nil {
		return nil, utils.ErrCategoryNotFound
	}
	catSlug, err := s.slugFor(ctx, workspaceID, c.ID, req.Name)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Slug = catSlug
	c.Description = req.Description
	c.Position = req.Position
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, dbErr("update category", err)
	}
	resp := response_models.NewCategoryResponse(c)
	return &resp, nil
}

func (s *CategoryService) Delete(ctx context.Context, workspaceID, actorID, categoryID uuid.UUID) error {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleEditor); err != nil {
		return err
	}
	c, err := s.categories.FindById(ctx, workspaceID, categoryID)
	if err != nil {
		return dbErr("find category", err)
	}
	if c == nil {
		return utils.ErrCategoryNotFound
	}
	if err := s.categories.Delete(ctx, workspaceID, categoryID); err != nil {
		return dbErr("delete category", err)
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *db_models.Category) error
	FindById(ctx context.Context, workspaceID, id uuid.UUID) (*db_models.Category, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]db_models.Category, error)
	SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, except uuid.UUID) (bool, error)
	Update(ctx context.Context, category *db_models.Category) error
	// Delete removes the category and drops its id from every walkthrough that referenced it.
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *db_models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) FindById(ctx context.Context, workspaceID, id uuid.UUID) (*db_models.Category, error) {
	var c db_models.Category
	err := r.db.WithContext(ctx).First(&c, "workspace_id = ? AND id = ?", workspaceID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]db_models.Category, error) {
	var out []db_models.Category
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("position ASC, name ASC").
		Find(&out).Error
	return out, err
}

func (r *categoryRepository) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string, except uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db_models.Category{}).
		Where("workspace_id = ? AND slug = ? AND id <> ?", workspaceID, slug, except).
		Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) Update(ctx context.Context, category *db_models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("workspace_id = ? AND id = ?", workspaceID, id).Delete(&db_models.Category{}).Error; err != nil {
			return err
		}
		return tx.Model(&db_models.Walkthrough{}).
			Where("workspace_id = ? AND ? = ANY(category_ids)", workspaceID, id.String()).
			Update("category_ids", gorm.Expr("array_remove(category_ids, ?)", id.String())).Error
	})
}

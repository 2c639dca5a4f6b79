package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

type WalkthroughFilter struct {
	CategoryID string
	Status     db_models.WalkthroughStatus
	Archived   *bool
}

type WalkthroughRepository interface {
	Create(ctx context.Context, w *db_models.Walkthrough) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Walkthrough, error)
	FindBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*db_models.Walkthrough, error)
	SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string) (bool, error)
	List(ctx context.Context, workspaceID uuid.UUID, filter WalkthroughFilter) ([]db_models.Walkthrough, error)
	ListPublic(ctx context.Context, workspaceID uuid.UUID) ([]db_models.Walkthrough, error)
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)
	Update(ctx context.Context, w *db_models.Walkthrough) error
	// UpdateWithSnapshot appends the version row and saves w in one transaction.
	UpdateWithSnapshot(ctx context.Context, w *db_models.Walkthrough, version *db_models.WalkthroughVersion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type walkthroughRepository struct {
	db *gorm.DB
}

func NewWalkthroughRepository(db *gorm.DB) WalkthroughRepository {
	return &walkthroughRepository{db: db}
}

func (r *walkthroughRepository) Create(ctx context.Context, w *db_models.Walkthrough) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *walkthroughRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Walkthrough, error) {
	var w db_models.Walkthrough
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *walkthroughRepository) FindBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*db_models.Walkthrough, error) {
	var w db_models.Walkthrough
	err := r.db.WithContext(ctx).First(&w, "workspace_id = ? AND slug = ?", workspaceID, slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *walkthroughRepository) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db_models.Walkthrough{}).
		Where("workspace_id = ? AND slug = ?", workspaceID, slug).
		Count(&count).Error
	return count > 0, err
}

func (r *walkthroughRepository) List(ctx context.Context, workspaceID uuid.UUID, filter WalkthroughFilter) ([]db_models.Walkthrough, error) {
	q := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	if filter.CategoryID != "" {
		q = q.Where("? = ANY(category_ids)", filter.CategoryID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}
	var out []db_models.Walkthrough
	err := q.Order("updated_at DESC").Find(&out).Error
	return out, err
}

func (r *walkthroughRepository) ListPublic(ctx context.Context, workspaceID uuid.UUID) ([]db_models.Walkthrough, error) {
	var out []db_models.Walkthrough
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND status = ? AND archived = ? AND privacy <> ?",
			workspaceID, db_models.StatusPublished, false, db_models.PrivacyPrivate).
		Order("title ASC").
		Find(&out).Error
	return out, err
}

func (r *walkthroughRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db_models.Walkthrough{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count, err
}

func (r *walkthroughRepository) Update(ctx context.Context, w *db_models.Walkthrough) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *walkthroughRepository) UpdateWithSnapshot(ctx context.Context, w *db_models.Walkthrough, version *db_models.WalkthroughVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		return tx.Save(w).Error
	})
}

func (r *walkthroughRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&db_models.Walkthrough{}, "id = ?", id).Error
}

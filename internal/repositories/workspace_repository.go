package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace and its owner membership atomically.
	CreateWithOwner(ctx context.Context, ws *db_models.Workspace, owner *db_models.WorkspaceMember) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Workspace, error)
	FindBySlug(ctx context.Context, slug string) (*db_models.Workspace, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.Workspace, error)
	Update(ctx context.Context, ws *db_models.Workspace) error
	UpdatePlan(ctx context.Context, id uuid.UUID, planID string) error

	FindMember(ctx context.Context, workspaceID, accountID uuid.UUID) (*db_models.WorkspaceMember, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]db_models.WorkspaceMember, error)
	AddMember(ctx context.Context, member *db_models.WorkspaceMember) error
	RemoveMember(ctx context.Context, workspaceID, accountID uuid.UUID) error
}

type workspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) CreateWithOwner(ctx context.Context, ws *db_models.Workspace, owner *db_models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ws).Error; err != nil {
			return err
		}
		owner.WorkspaceID = ws.ID
		return tx.Create(owner).Error
	})
}

func (r *workspaceRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Workspace, error) {
	var ws db_models.Workspace
	err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepository) FindBySlug(ctx context.Context, slug string) (*db_models.Workspace, error) {
	var ws db_models.Workspace
	err := r.db.WithContext(ctx).First(&ws, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db_models.Workspace{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *workspaceRepository) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.Workspace, error) {
	var out []db_models.Workspace
	err := r.db.WithContext(ctx).
		Joins("JOIN workspace_members m ON m.workspace_id = workspaces.id AND m.deleted_at IS NULL").
		Where("m.account_id = ?", accountID).
		Order("workspaces.created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *workspaceRepository) Update(ctx context.Context, ws *db_models.Workspace) error {
	return r.db.WithContext(ctx).Save(ws).Error
}

func (r *workspaceRepository) UpdatePlan(ctx context.Context, id uuid.UUID, planID string) error {
	return r.db.WithContext(ctx).Model(&db_models.Workspace{}).Where("id = ?", id).Update("plan_id", planID).Error
}

func (r *workspaceRepository) FindMember(ctx context.Context, workspaceID, accountID uuid.UUID) (*db_models.WorkspaceMember, error) {
	var m db_models.WorkspaceMember
	err := r.db.WithContext(ctx).First(&m, "workspace_id = ? AND account_id = ?", workspaceID, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *workspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]db_models.WorkspaceMember, error) {
	var out []db_models.WorkspaceMember
	err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *workspaceRepository) AddMember(ctx context.Context, member *db_models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *workspaceRepository) RemoveMember(ctx context.Context, workspaceID, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("workspace_id = ? AND account_id = ?", workspaceID, accountID).
		Delete(&db_models.WorkspaceMember{}).Error
}

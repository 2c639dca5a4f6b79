package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

// VersionRepository reads the append-only version log. Rows are written only through
// WalkthroughRepository.UpdateWithSnapshot.
type VersionRepository interface {
	FindByVersion(ctx context.Context, walkthroughID uuid.UUID, version int) (*db_models.WalkthroughVersion, error)
	ListByWalkthrough(ctx context.Context, walkthroughID uuid.UUID) ([]db_models.WalkthroughVersion, error)
	LatestWithImageURLs(ctx context.Context, walkthroughID uuid.UUID) (*db_models.WalkthroughVersion, error)
}

type versionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) FindByVersion(ctx context.Context, walkthroughID uuid.UUID, version int) (*db_models.WalkthroughVersion, error) {
	var v db_models.WalkthroughVersion
	err := r.db.WithContext(ctx).First(&v, "walkthrough_id = ? AND version = ?", walkthroughID, version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *versionRepository) ListByWalkthrough(ctx context.Context, walkthroughID uuid.UUID) ([]db_models.WalkthroughVersion, error) {
	var out []db_models.WalkthroughVersion
	err := r.db.WithContext(ctx).
		Where("walkthrough_id = ?", walkthroughID).
		Order("version DESC").
		Find(&out).Error
	return out, err
}

func (r *versionRepository) LatestWithImageURLs(ctx context.Context, walkthroughID uuid.UUID) (*db_models.WalkthroughVersion, error) {
	var v db_models.WalkthroughVersion
	err := r.db.WithContext(ctx).
		Where("walkthrough_id = ? AND has_image_urls = ?", walkthroughID, true).
		Order("version DESC").
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

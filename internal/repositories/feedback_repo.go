package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

type FeedbackRepositoryInterface interface {
	CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error
	ListFeedback(ctx context.Context, walkthroughID uuid.UUID, page, pageSize int) ([]db_models.Feedback, int64, error)
}

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *FeedbackRepository) ListFeedback(ctx context.Context, walkthroughID uuid.UUID, page, pageSize int) ([]db_models.Feedback, int64, error) {
	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&db_models.Feedback{}).Where("walkthrough_id = ?", walkthroughID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var feedbacks []db_models.Feedback
	err := scoped().
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, total, err
}

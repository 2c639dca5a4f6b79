package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

type EventCounts struct {
	WalkthroughID uuid.UUID
	Views         int64
	StepViews     int64
	Completions   int64
}

type AnalyticsRepository interface {
	Insert(ctx context.Context, event *db_models.AnalyticsEvent) error
	CountsByWorkspace(ctx context.Context, workspaceID uuid.UUID, since int64) ([]EventCounts, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Insert(ctx context.Context, event *db_models.AnalyticsEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *analyticsRepository) CountsByWorkspace(ctx context.Context, workspaceID uuid.UUID, since int64) ([]EventCounts, error) {
	var out []EventCounts
	err := r.db.WithContext(ctx).Model(&db_models.AnalyticsEvent{}).
		Select(`walkthrough_id,
			COUNT(*) FILTER (WHERE kind = ?) AS views,
			COUNT(*) FILTER (WHERE kind = ?) AS step_views,
			COUNT(*) FILTER (WHERE kind = ?) AS completions`,
			db_models.EventView, db_models.EventStepView, db_models.EventComplete).
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Group("walkthrough_id").
		Scan(&out).Error
	return out, err
}

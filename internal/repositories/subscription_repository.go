package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/models/db_models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *db_models.Subscription) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error)
	// FindByWorkspace returns the most recently created subscription of a workspace.
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*db_models.Subscription, error)
	FindByProviderId(ctx context.Context, providerSubscriptionID string) (*db_models.Subscription, error)
	// UpdateProviderFields writes status, provider_status and the three billing timestamps only.
	UpdateProviderFields(ctx context.Context, sub *db_models.Subscription) error
	SetCancelAtPeriodEnd(ctx context.Context, id uuid.UUID, value bool) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) first(ctx context.Context, query string, args ...any) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).Where(query, args...).Order("created_at DESC").First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *subscriptionRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) (*db_models.Subscription, error) {
	return r.first(ctx, "workspace_id = ?", workspaceID)
}

func (r *subscriptionRepository) FindByProviderId(ctx context.Context, providerSubscriptionID string) (*db_models.Subscription, error) {
	return r.first(ctx, "provider_subscription_id = ?", providerSubscriptionID)
}

func (r *subscriptionRepository) UpdateProviderFields(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Model(&db_models.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]any{
			"status":             sub.Status,
			"provider_status":    sub.ProviderStatus,
			"next_billing_time":  sub.NextBillingTime,
			"final_payment_time": sub.FinalPaymentTime,
			"last_payment_time":  sub.LastPaymentTime,
		}).Error
}

func (r *subscriptionRepository) SetCancelAtPeriodEnd(ctx context.Context, id uuid.UUID, value bool) error {
	return r.db.WithContext(ctx).Model(&db_models.Subscription{}).
		Where("id = ?", id).
		Update("cancel_at_period_end", value).Error
}

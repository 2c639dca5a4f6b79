package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

// ReconcileResult is the outcome of refreshing a subscription from the provider.
type ReconcileResult struct {
	Success bool
	// Skipped is set when the provider was not asked (non-PayPal or already expired).
	Skipped       bool
	Changed       bool
	BillingInfo   *billing.BillingInfo
	AccessGranted bool
	Subscription  *db_models.Subscription
}

type ReconcileServiceInterface interface {
	// Reconcile refreshes the provider fields of a subscription. On provider failure the
	// result reports Success=false and the error wraps utils.ErrUpstreamUnverified; the stored
	// record is left untouched.
	Reconcile(ctx context.Context, subscriptionID uuid.UUID, force bool) (*ReconcileResult, error)
	ReconcileSubscription(ctx context.Context, sub *db_models.Subscription, force bool) (*ReconcileResult, error)
	// ApplyEventStatus records a provider status carried by a webhook event without fetching
	// billing info.
	ApplyEventStatus(ctx context.Context, sub *db_models.Subscription, providerStatus string) error
}

type ReconcileService struct {
	subscriptions repositories.SubscriptionRepository
	workspaces    repositories.WorkspaceRepository
	provider      billing.Provider
	metrics       *billing.Metrics
	log           *zap.Logger
	now           func() time.Time
}

func NewReconcileService(
	subscriptions repositories.SubscriptionRepository,
	workspaces repositories.WorkspaceRepository,
	provider billing.Provider,
	metrics *billing.Metrics,
	log *zap.Logger,
) ReconcileServiceInterface {
	return &ReconcileService{
		subscriptions: subscriptions,
		workspaces:    workspaces,
		provider:      provider,
		metrics:       metrics,
		log:           log.Named("reconcile"),
		now:           time.Now,
	}
}

func (s *ReconcileService) Reconcile(ctx context.Context, subscriptionID uuid.UUID, force bool) (*ReconcileResult, error) {
	sub, err := s.subscriptions.FindById(ctx, subscriptionID)
	if err != nil {
		return nil, dbErr("find subscription", err)
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	return s.ReconcileSubscription(ctx, sub, force)
}

func (s *ReconcileService) ReconcileSubscription(ctx context.Context, sub *db_models.Subscription, force bool) (*ReconcileResult, error) {
	local := billing.Evaluate(s.now(), sub)

	if !force && (sub.Provider != db_models.ProviderPayPal || sub.Status == db_models.SubStatusExpired) {
		s.metrics.RecordReconcile(billing.OutcomeSkipped)
		return &ReconcileResult{Success: true, Skipped: true, AccessGranted: local.Granted, Subscription: sub}, nil
	}

	started := time.Now()
	info, err := s.provider.GetBillingInfo(ctx, sub.ProviderSubscriptionID)
	s.metrics.ObserveProvider("get_subscription", started)
	if err != nil {
		s.metrics.RecordReconcile(billing.OutcomeFailed)
		s.log.Warn("provider fetch failed",
			zap.String("subscription_id", sub.ID.String()),
			zap.String("provider_subscription_id", sub.ProviderSubscriptionID),
			zap.Error(err))
		return &ReconcileResult{AccessGranted: local.Granted, Subscription: sub},
			fmt.Errorf("%w: reconcile %s: %w", utils.ErrUpstreamUnverified, sub.ID, err)
	}

	updated := *sub
	if info.Status != "" {
		updated.ProviderStatus = info.Status
	}
	updated.Status = billing.MapProviderStatus(info.Status, sub.Status)
	updated.NextBillingTime = info.NextBillingTime
	updated.FinalPaymentTime = info.FinalPaymentTime
	updated.LastPaymentTime = info.LastPaymentTime

	changed := providerFieldsDiffer(sub, &updated)
	if changed {
		if err := s.subscriptions.UpdateProviderFields(ctx, &updated); err != nil {
			return nil, dbErr("update subscription", err)
		}
		s.metrics.RecordReconcile(billing.OutcomeUpdated)
		s.log.Info("subscription reconciled",
			zap.String("subscription_id", sub.ID.String()),
			zap.String("status", string(updated.Status)),
			zap.String("provider_status", updated.ProviderStatus),
			zap.String("next_billing_time", utils.FormatRFC3339(updated.NextBillingTime)),
			zap.String("final_payment_time", utils.FormatRFC3339(updated.FinalPaymentTime)))
	} else {
		s.metrics.RecordReconcile(billing.OutcomeUnchanged)
	}

	if err := s.syncPlan(ctx, sub.Status, &updated); err != nil {
		return nil, err
	}

	return &ReconcileResult{
		Success:       true,
		Changed:       changed,
		BillingInfo:   &info,
		AccessGranted: billing.AccessGranted(s.now(), updated.NextBillingTime, updated.FinalPaymentTime),
		Subscription:  &updated,
	}, nil
}

func (s *ReconcileService) ApplyEventStatus(ctx context.Context, sub *db_models.Subscription, providerStatus string) error {
	updated := *sub
	updated.ProviderStatus = providerStatus
	updated.Status = billing.MapProviderStatus(providerStatus, sub.Status)
	if !providerFieldsDiffer(sub, &updated) {
		return nil
	}
	if err := s.subscriptions.UpdateProviderFields(ctx, &updated); err != nil {
		return dbErr("update subscription", err)
	}
	s.log.Info("subscription status from webhook event",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("status", string(updated.Status)))
	return s.syncPlan(ctx, sub.Status, &updated)
}

// syncPlan moves the workspace to the subscribed plan when the subscription becomes active
// and to free when the provider reports it expired. No other transition changes the plan.
func (s *ReconcileService) syncPlan(ctx context.Context, previous db_models.SubscriptionStatus, sub *db_models.Subscription) error {
	var target string
	switch {
	case sub.Status == db_models.SubStatusExpired:
		target = billing.PlanFree
	case sub.Status == db_models.SubStatusActive && previous != db_models.SubStatusActive:
		target = sub.PlanID
	default:
		return nil
	}
	if target == "" {
		return nil
	}
	ws, err := s.workspaces.FindById(ctx, sub.WorkspaceID)
	if err != nil {
		return dbErr("find workspace", err)
	}
	if ws == nil || ws.PlanID == target {
		return nil
	}
	if err := s.workspaces.UpdatePlan(ctx, ws.ID, target); err != nil {
		return dbErr("update workspace plan", err)
	}
	s.log.Info("workspace plan changed",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("from", ws.PlanID),
		zap.String("to", target))
	return nil
}

func providerFieldsDiffer(a, b *db_models.Subscription) bool {
	return a.Status != b.Status ||
		a.ProviderStatus != b.ProviderStatus ||
		!utils.SameInstant(a.NextBillingTime, b.NextBillingTime) ||
		!utils.SameInstant(a.FinalPaymentTime, b.FinalPaymentTime) ||
		!utils.SameInstant(a.LastPaymentTime, b.LastPaymentTime)
}

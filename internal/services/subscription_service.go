package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	mem "stepwise/pkg/memcache"
	"stepwise/pkg/utils"
)

// webhookReplayWindow covers PayPal's redelivery schedule for unacknowledged events.
const webhookReplayWindow = 72 * time.Hour

type SubscriptionServiceInterface interface {
	Register(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.RegisterSubscriptionRequest) (*response_models.SubscriptionResponse, error)
	Status(ctx context.Context, workspaceID, actorID uuid.UUID) (*response_models.SubscriptionResponse, error)
	// Cancel always reports its outcome through the response status; the error is set only
	// when the actor may not manage billing.
	Cancel(ctx context.Context, workspaceID, actorID uuid.UUID, reason string) (*response_models.CancelSubscriptionResponse, error)
	Reconcile(ctx context.Context, workspaceID, actorID uuid.UUID, force bool) (*response_models.ReconcileResponse, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type SubscriptionService struct {
	subscriptions repositories.SubscriptionRepository
	reconciler    ReconcileServiceInterface
	provider      billing.Provider
	guard         memberGuard
	metrics       *billing.Metrics
	deliveries    mem.DeliveryLog
	log           *zap.Logger
	now           func() time.Time
}

func NewSubscriptionService(
	subscriptions repositories.SubscriptionRepository,
	workspaces repositories.WorkspaceRepository,
	reconciler ReconcileServiceInterface,
	provider billing.Provider,
	metrics *billing.Metrics,
	deliveries mem.DeliveryLog,
	log *zap.Logger,
) SubscriptionServiceInterface {
	return &SubscriptionService{
		subscriptions: subscriptions,
		reconciler:    reconciler,
		provider:      provider,
		guard:         memberGuard{workspaces: workspaces},
		metrics:       metrics,
		deliveries:    deliveries,
		log:           log.Named("subscription"),
		now:           time.Now,
	}
}

func (s *SubscriptionService) Register(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.RegisterSubscriptionRequest) (*response_models.SubscriptionResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleAdmin); err != nil {
		return nil, err
	}
	if _, ok := billing.PlanByID(req.PlanID); !ok || req.PlanID == billing.PlanFree {
		return nil, utils.NewValidationError("plan_id", "unknown paid plan")
	}
	providerID := strings.TrimSpace(req.SubscriptionID)
	if providerID == "" {
		return nil, utils.NewValidationError("subscription_id", "subscription id is required")
	}

	existing, err := s.subscriptions.FindByProviderId(ctx, providerID)
	if err != nil {
		return nil, dbErr("find subscription", err)
	}
	sub := existing
	if existing != nil && existing.WorkspaceID != workspaceID {
		return nil, utils.ErrAccessDenied
	}
	if sub == nil {
		sub = &db_models.Subscription{
			WorkspaceID:            workspaceID,
			PlanID:                 req.PlanID,
			Provider:               db_models.ProviderPayPal,
			ProviderSubscriptionID: providerID,
			Status:                 db_models.SubStatusPending,
		}
		if err := s.subscriptions.Create(ctx, sub); err != nil {
			return nil, dbErr("create subscription", err)
		}
		s.log.Info("subscription registered",
			zap.String("workspace_id", workspaceID.String()),
			zap.String("provider_subscription_id", providerID))
	}

	res, err := s.reconciler.ReconcileSubscription(ctx, sub, true)
	if err != nil {
		if !errors.Is(err, utils.ErrUpstreamUnverified) {
			return nil, err
		}
		// the webhook or a later reconcile will pick it up
		s.log.Warn("initial reconcile failed", zap.String("subscription_id", sub.ID.String()), zap.Error(err))
		resp := response_models.NewSubscriptionResponse(sub, billing.Evaluate(s.now(), sub))
		return &resp, nil
	}
	resp := response_models.NewSubscriptionResponse(res.Subscription, billing.Evaluate(s.now(), res.Subscription))
	return &resp, nil
}

func (s *SubscriptionService) Status(ctx context.Context, workspaceID, actorID uuid.UUID) (*response_models.SubscriptionResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	sub, err := s.subscriptions.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("find subscription", err)
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	resp := response_models.NewSubscriptionResponse(sub, billing.Evaluate(s.now(), sub))
	return &resp, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, workspaceID, actorID uuid.UUID, reason string) (*response_models.CancelSubscriptionResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleAdmin); err != nil {
		return nil, err
	}
	resp := s.cancel(ctx, workspaceID, reason)
	s.metrics.RecordCancel(resp.Status)
	s.log.Info("cancel subscription",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("status", string(resp.Status)))
	return resp, nil
}

func (s *SubscriptionService) cancel(ctx context.Context, workspaceID uuid.UUID, reason string) *response_models.CancelSubscriptionResponse {
	result := func(status billing.CancelStatus, message string) *response_models.CancelSubscriptionResponse {
		return &response_models.CancelSubscriptionResponse{Status: status, Success: status.Succeeded(), Message: message}
	}

	sub, err := s.subscriptions.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		s.log.Error("find subscription", zap.Error(err))
		return result(billing.CancelError, "Could not load the subscription")
	}
	if sub == nil {
		return result(billing.CancelNoSubscription, "Workspace has no subscription")
	}
	if sub.Provider != db_models.ProviderPayPal {
		return result(billing.CancelNotPayPal, "Subscription is not billed through PayPal")
	}

	switch {
	case sub.Status == db_models.SubStatusCancelled,
		sub.Status == db_models.SubStatusActive && sub.CancelAtPeriodEnd:
		resp := result(billing.CancelAlreadyCancelled, "Subscription is already cancelled")
		resp.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		return resp
	case sub.Status == db_models.SubStatusPending:
		if err := s.subscriptions.SetCancelAtPeriodEnd(ctx, sub.ID, true); err != nil {
			s.log.Error("flag pending cancellation", zap.Error(err))
			return result(billing.CancelError, "Could not update the subscription")
		}
		resp := result(billing.CancelPendingCancellation, "Subscription will be cancelled once PayPal activates it")
		resp.CancelAtPeriodEnd = true
		return resp
	case sub.Status != db_models.SubStatusActive:
		return result(billing.CancelNotActive, "Subscription is not active")
	}

	started := time.Now()
	code, err := s.provider.CancelSubscription(ctx, sub.ProviderSubscriptionID, reason)
	s.metrics.ObserveProvider("cancel_subscription", started)
	switch {
	case errors.Is(err, billing.ErrProviderAuth):
		s.log.Error("paypal authentication failed", zap.Error(err))
		return result(billing.CancelAuthFailed, "Could not authenticate with PayPal")
	case err != nil:
		s.log.Warn("paypal cancel failed", zap.Error(err))
		return result(billing.CancelFailed, "PayPal did not accept the cancellation")
	case code != http.StatusNoContent:
		s.log.Warn("paypal cancel rejected", zap.Int("http_status", code))
		return result(billing.CancelFailed, "PayPal did not accept the cancellation")
	}

	if err := s.subscriptions.SetCancelAtPeriodEnd(ctx, sub.ID, true); err != nil {
		s.log.Error("flag cancellation after provider ack", zap.Error(err))
		return result(billing.CancelError, "PayPal cancelled the subscription but it could not be recorded")
	}
	sub.CancelAtPeriodEnd = true

	res, err := s.reconciler.ReconcileSubscription(ctx, sub, true)
	if err != nil {
		resp := result(billing.CancelReconcileFailed, "Cancelled with PayPal; access dates could not be verified yet")
		resp.CancelAtPeriodEnd = true
		return resp
	}

	granted := res.AccessGranted
	resp := result(billing.CancelCancelled, "Subscription cancelled; access continues until the end of the paid period")
	resp.CancelAtPeriodEnd = true
	resp.AccessGranted = &granted
	resp.NextBillingTime = res.Subscription.NextBillingTime
	resp.FinalPaymentTime = res.Subscription.FinalPaymentTime
	return resp
}

func (s *SubscriptionService) Reconcile(ctx context.Context, workspaceID, actorID uuid.UUID, force bool) (*response_models.ReconcileResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleAdmin); err != nil {
		return nil, err
	}
	sub, err := s.subscriptions.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("find subscription", err)
	}
	if sub == nil {
		return nil, utils.ErrSubscriptionNotFound
	}
	res, err := s.reconciler.ReconcileSubscription(ctx, sub, force)
	if err != nil {
		return nil, err
	}
	view := response_models.NewSubscriptionResponse(res.Subscription, billing.Evaluate(s.now(), res.Subscription))
	return &response_models.ReconcileResponse{
		Success:       res.Success,
		Skipped:       res.Skipped,
		Changed:       res.Changed,
		AccessGranted: res.AccessGranted,
		Subscription:  &view,
	}, nil
}

type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID                 string `json:"id"`
		Status             string `json:"status"`
		BillingAgreementID string `json:"billing_agreement_id"`
	} `json:"resource"`
}

// HandleWebhook verifies a PayPal delivery and reconciles the subscription it refers to.
// Unknown subscriptions and unrelated event types are acknowledged and ignored.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	ok, err := s.provider.VerifyWebhook(ctx, headers, body)
	if err != nil {
		return errors.Join(utils.ErrUpstreamUnverified, err)
	}
	if !ok {
		return utils.ErrInvalidWebhook
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return utils.NewValidationError("body", "malformed webhook event")
	}
	if s.deliveries != nil && event.ID != "" && s.deliveries.Seen(event.ID) {
		s.log.Debug("duplicate webhook delivery", zap.String("event_id", event.ID))
		return nil
	}
	if err := s.handleEvent(ctx, event); err != nil {
		return err
	}
	if s.deliveries != nil && event.ID != "" {
		s.deliveries.Mark(event.ID, webhookReplayWindow)
	}
	return nil
}

func (s *SubscriptionService) handleEvent(ctx context.Context, event webhookEvent) error {
	var providerID, eventStatus string
	switch {
	case strings.HasPrefix(event.EventType, "BILLING.SUBSCRIPTION."):
		providerID, eventStatus = event.Resource.ID, event.Resource.Status
	case event.EventType == "PAYMENT.SALE.COMPLETED":
		providerID = event.Resource.BillingAgreementID
	default:
		s.log.Debug("ignoring webhook event", zap.String("event_type", event.EventType))
		return nil
	}
	if providerID == "" {
		return nil
	}

	sub, err := s.subscriptions.FindByProviderId(ctx, providerID)
	if err != nil {
		return dbErr("find subscription", err)
	}
	if sub == nil {
		s.log.Warn("webhook for unknown subscription",
			zap.String("event_id", event.ID),
			zap.String("provider_subscription_id", providerID))
		return nil
	}

	_, err = s.reconciler.ReconcileSubscription(ctx, sub, true)
	if err == nil {
		return nil
	}
	if !errors.Is(err, utils.ErrUpstreamUnverified) || eventStatus == "" {
		return err
	}
	s.log.Warn("applying webhook status without provider confirmation",
		zap.String("event_id", event.ID),
		zap.String("status", eventStatus))
	return s.reconciler.ApplyEventStatus(ctx, sub, eventStatus)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	mem "stepwise/pkg/memcache"
	"stepwise/pkg/utils"
)

type billingFixture struct {
	store      *memStore
	provider   *mockProvider
	reconciler *ReconcileService
	svc        *SubscriptionService
	ws         *db_models.Workspace
	admin      uuid.UUID
	viewer     uuid.UUID
}

func newBillingFixture(t *testing.T, now time.Time, planID string) *billingFixture {
	t.Helper()
	store := newMemStore()
	admin, viewer := uuid.New(), uuid.New()
	ws := store.seedWorkspace(planID, map[uuid.UUID]db_models.MemberRole{
		admin:  db_models.RoleOwner,
		viewer: db_models.RoleViewer,
	})

	provider := &mockProvider{}
	subs := fakeSubscriptionRepo{s: store}
	workspaces := fakeWorkspaceRepo{s: store}
	reconciler := &ReconcileService{
		subscriptions: subs,
		workspaces:    workspaces,
		provider:      provider,
		log:           testLogger(),
		now:           fixedClock(now),
	}
	svc := &SubscriptionService{
		subscriptions: subs,
		reconciler:    reconciler,
		provider:      provider,
		guard:         memberGuard{workspaces: workspaces},
		deliveries:    mem.NewDeliveries(),
		log:           testLogger(),
		now:           fixedClock(now),
	}
	return &billingFixture{store: store, provider: provider, reconciler: reconciler, svc: svc, ws: ws, admin: admin, viewer: viewer}
}

func (f *billingFixture) seedSub(status db_models.SubscriptionStatus, mutate ...func(*db_models.Subscription)) *db_models.Subscription {
	sub := &db_models.Subscription{
		WorkspaceID:            f.ws.ID,
		PlanID:                 billing.PlanPro,
		Provider:               db_models.ProviderPayPal,
		ProviderSubscriptionID: "I-" + uuid.NewString()[:10],
		Status:                 status,
	}
	for _, m := range mutate {
		m(sub)
	}
	return f.store.seedSubscription(sub)
}

func TestCancel_PendingSubscriptionOnlySetsFlag(t *testing.T) {
	f := newBillingFixture(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), billing.PlanFree)
	sub := f.seedSub(db_models.SubStatusPending)

	resp, err := f.svc.Cancel(context.Background(), f.ws.ID, f.admin, "")
	require.NoError(t, err)

	assert.Equal(t, billing.CancelPendingCancellation, resp.Status)
	assert.True(t, resp.Success)
	assert.True(t, resp.CancelAtPeriodEnd)

	stored := f.store.subscription(sub.ID)
	assert.True(t, stored.CancelAtPeriodEnd)
	assert.Equal(t, db_models.SubStatusPending, stored.Status)
	f.provider.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_ActiveWithProviderAckReconciles(t *testing.T) {
	now := time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)
	next := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newBillingFixture(t, now, billing.PlanPro)
	sub := f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) {
		s.ProviderStatus = "ACTIVE"
		s.NextBillingTime = ptrTime(next)
	})

	f.provider.On("CancelSubscription", mock.Anything, sub.ProviderSubscriptionID, "too expensive").
		Return(http.StatusNoContent, nil).Once()
	f.provider.On("GetBillingInfo", mock.Anything, sub.ProviderSubscriptionID).
		Return(billing.BillingInfo{Status: "CANCELLED", NextBillingTime: ptrTime(next)}, nil).Once()

	resp, err := f.svc.Cancel(context.Background(), f.ws.ID, f.admin, "too expensive")
	require.NoError(t, err)

	assert.Equal(t, billing.CancelCancelled, resp.Status)
	assert.True(t, resp.Success)
	assert.True(t, resp.CancelAtPeriodEnd)
	require.NotNil(t, resp.AccessGranted)
	assert.True(t, *resp.AccessGranted, "paid period runs until the next billing time")
	require.NotNil(t, resp.NextBillingTime)
	assert.True(t, resp.NextBillingTime.Equal(next))

	stored := f.store.subscription(sub.ID)
	assert.True(t, stored.CancelAtPeriodEnd)
	assert.Equal(t, db_models.SubStatusCancelled, stored.Status)
	assert.Equal(t, "CANCELLED", stored.ProviderStatus)
	assert.Equal(t, billing.PlanPro, f.store.workspace(f.ws.ID).PlanID, "cancellation alone keeps the plan")
	f.provider.AssertExpectations(t)
}

func TestCancel_ReconcileFailureAfterAck(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	sub := f.seedSub(db_models.SubStatusActive)

	f.provider.On("CancelSubscription", mock.Anything, sub.ProviderSubscriptionID, "").Return(http.StatusNoContent, nil)
	f.provider.On("GetBillingInfo", mock.Anything, sub.ProviderSubscriptionID).
		Return(billing.BillingInfo{}, errors.New("paypal unavailable"))

	resp, err := f.svc.Cancel(context.Background(), f.ws.ID, f.admin, "")
	require.NoError(t, err)

	assert.Equal(t, billing.CancelReconcileFailed, resp.Status)
	assert.False(t, resp.Success)
	assert.True(t, resp.CancelAtPeriodEnd)
	assert.Nil(t, resp.AccessGranted)
	assert.True(t, f.store.subscription(sub.ID).CancelAtPeriodEnd)
}

func TestCancel_ProviderOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		err    error
		expect billing.CancelStatus
	}{
		{"auth failure", 0, fmt.Errorf("%w: invalid_client", billing.ErrProviderAuth), billing.CancelAuthFailed},
		{"transport failure", 0, errors.New("connection reset"), billing.CancelFailed},
		{"unprocessable", http.StatusUnprocessableEntity, nil, billing.CancelFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture(t, time.Now(), billing.PlanPro)
			sub := f.seedSub(db_models.SubStatusActive)
			f.provider.On("CancelSubscription", mock.Anything, sub.ProviderSubscriptionID, "").Return(tt.code, tt.err)

			resp, err := f.svc.Cancel(context.Background(), f.ws.ID, f.admin, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expect, resp.Status)
			assert.False(t, resp.Success)
			assert.False(t, f.store.subscription(sub.ID).CancelAtPeriodEnd, "flag is only set after the provider accepts")
			f.provider.AssertNotCalled(t, "GetBillingInfo", mock.Anything, mock.Anything)
		})
	}
}

func TestCancel_LocalOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		seed   func(f *billingFixture)
		expect billing.CancelStatus
		ok     bool
	}{
		{"no subscription", func(*billingFixture) {}, billing.CancelNoSubscription, false},
		{"other provider", func(f *billingFixture) {
			f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) { s.Provider = "manual" })
		}, billing.CancelNotPayPal, false},
		{"already cancelled", func(f *billingFixture) { f.seedSub(db_models.SubStatusCancelled) }, billing.CancelAlreadyCancelled, true},
		{"active with flag", func(f *billingFixture) {
			f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) { s.CancelAtPeriodEnd = true })
		}, billing.CancelAlreadyCancelled, true},
		{"expired", func(f *billingFixture) { f.seedSub(db_models.SubStatusExpired) }, billing.CancelNotActive, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture(t, time.Now(), billing.PlanPro)
			tt.seed(f)

			resp, err := f.svc.Cancel(context.Background(), f.ws.ID, f.admin, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expect, resp.Status)
			assert.Equal(t, tt.ok, resp.Success)
			f.provider.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCancel_RequiresAdmin(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	f.seedSub(db_models.SubStatusActive)

	_, err := f.svc.Cancel(context.Background(), f.ws.ID, f.viewer, "")
	assert.ErrorIs(t, err, utils.ErrAccessDenied)

	_, err = f.svc.Cancel(context.Background(), f.ws.ID, uuid.New(), "")
	assert.ErrorIs(t, err, utils.ErrAccessDenied)
}

func TestReconcile_SkipsExpiredUnlessForced(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanFree)
	sub := f.seedSub(db_models.SubStatusExpired)

	res, err := f.reconciler.Reconcile(context.Background(), sub.ID, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	f.provider.AssertNotCalled(t, "GetBillingInfo", mock.Anything, mock.Anything)
}

func TestReconcile_UnchangedDoesNotWrite(t *testing.T) {
	next := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	f := newBillingFixture(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), billing.PlanPro)
	sub := f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) {
		s.ProviderStatus = "ACTIVE"
		s.NextBillingTime = ptrTime(next)
	})
	f.provider.On("GetBillingInfo", mock.Anything, sub.ProviderSubscriptionID).
		Return(billing.BillingInfo{Status: "ACTIVE", NextBillingTime: ptrTime(next)}, nil)

	res, err := f.reconciler.Reconcile(context.Background(), sub.ID, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Changed)
	assert.True(t, res.AccessGranted)
	assert.Zero(t, f.store.providerUpdates)
}

func TestReconcile_ActivationUpgradesAndExpiryDowngrades(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newBillingFixture(t, now, billing.PlanFree)
	sub := f.seedSub(db_models.SubStatusPending)

	f.provider.On("GetBillingInfo", mock.Anything, sub.ProviderSubscriptionID).
		Return(billing.BillingInfo{Status: "ACTIVE", NextBillingTime: ptrTime(now.Add(30 * 24 * time.Hour))}, nil).Once()
	res, err := f.reconciler.Reconcile(context.Background(), sub.ID, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, db_models.SubStatusActive, f.store.subscription(sub.ID).Status)
	assert.Equal(t, billing.PlanPro, f.store.workspace(f.ws.ID).PlanID)

	f.provider.On("GetBillingInfo", mock.Anything, sub.ProviderSubscriptionID).
		Return(billing.BillingInfo{Status: "EXPIRED"}, nil).Once()
	res, err = f.reconciler.Reconcile(context.Background(), sub.ID, false)
	require.NoError(t, err)
	assert.False(t, res.AccessGranted)
	assert.Equal(t, db_models.SubStatusExpired, f.store.subscription(sub.ID).Status)
	assert.Equal(t, billing.PlanFree, f.store.workspace(f.ws.ID).PlanID)
}

func TestReconcile_ProviderFailureLeavesRecord(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	sub := f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) { s.ProviderStatus = "ACTIVE" })
	f.provider.On("GetBillingInfo", mock.Anything, sub.ProviderSubscriptionID).
		Return(billing.BillingInfo{}, errors.New("503 from paypal"))

	res, err := f.reconciler.Reconcile(context.Background(), sub.ID, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrUpstreamUnverified)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Zero(t, f.store.providerUpdates)
	assert.Equal(t, db_models.SubStatusActive, f.store.subscription(sub.ID).Status)
}

func TestRegister_KeepsPendingWhenProviderUnreachable(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanFree)
	f.provider.On("GetBillingInfo", mock.Anything, "I-NEW").Return(billing.BillingInfo{}, errors.New("timeout"))

	resp, err := f.svc.Register(context.Background(), f.ws.ID, f.admin, request_models.RegisterSubscriptionRequest{
		SubscriptionID: "I-NEW",
		PlanID:         billing.PlanPro,
	})
	require.NoError(t, err)
	assert.Equal(t, string(db_models.SubStatusPending), resp.Status)
	assert.False(t, resp.AccessGranted)
	assert.Equal(t, billing.PlanFree, f.store.workspace(f.ws.ID).PlanID)
}

func TestRegister_RejectsUnknownPlan(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanFree)
	_, err := f.svc.Register(context.Background(), f.ws.ID, f.admin, request_models.RegisterSubscriptionRequest{
		SubscriptionID: "I-NEW",
		PlanID:         "enterprise",
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plan_id", verr.Field)
}

func TestHandleWebhook_RejectsUnverified(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	f.provider.On("VerifyWebhook", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	err := f.svc.HandleWebhook(context.Background(), http.Header{}, []byte(`{}`))
	assert.ErrorIs(t, err, utils.ErrInvalidWebhook)
}

func TestHandleWebhook_FallsBackToEventStatus(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	sub := f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) { s.ProviderSubscriptionID = "I-HOOK" })

	f.provider.On("VerifyWebhook", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.provider.On("GetBillingInfo", mock.Anything, "I-HOOK").Return(billing.BillingInfo{}, errors.New("down"))

	body := []byte(`{"id":"WH-1","event_type":"BILLING.SUBSCRIPTION.CANCELLED","resource":{"id":"I-HOOK","status":"CANCELLED"}}`)
	require.NoError(t, f.svc.HandleWebhook(context.Background(), http.Header{}, body))

	stored := f.store.subscription(sub.ID)
	assert.Equal(t, db_models.SubStatusCancelled, stored.Status)
	assert.Equal(t, "CANCELLED", stored.ProviderStatus)
}

func TestHandleWebhook_IgnoresUnknownSubscription(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	f.provider.On("VerifyWebhook", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	body := []byte(`{"event_type":"PAYMENT.SALE.COMPLETED","resource":{"billing_agreement_id":"I-GONE"}}`)
	assert.NoError(t, f.svc.HandleWebhook(context.Background(), http.Header{}, body))
	f.provider.AssertNotCalled(t, "GetBillingInfo", mock.Anything, mock.Anything)
}

func TestHandleWebhook_SkipsRedelivery(t *testing.T) {
	f := newBillingFixture(t, time.Now(), billing.PlanPro)
	f.seedSub(db_models.SubStatusActive, func(s *db_models.Subscription) { s.ProviderSubscriptionID = "I-DUP" })

	f.provider.On("VerifyWebhook", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.provider.On("GetBillingInfo", mock.Anything, "I-DUP").Return(billing.BillingInfo{}, errors.New("down"))

	body := []byte(`{"id":"WH-DUP","event_type":"BILLING.SUBSCRIPTION.SUSPENDED","resource":{"id":"I-DUP","status":"SUSPENDED"}}`)
	require.NoError(t, f.svc.HandleWebhook(context.Background(), http.Header{}, body))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), http.Header{}, body))

	f.provider.AssertNumberOfCalls(t, "GetBillingInfo", 1)
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stepwise/internal/billing"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/pkg/utils"
)

type subscriptionServiceMock struct {
	mock.Mock
}

func (m *subscriptionServiceMock) Register(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.RegisterSubscriptionRequest) (*response_models.SubscriptionResponse, error) {
	args := m.Called(ctx, workspaceID, actorID, req)
	resp, _ := args.Get(0).(*response_models.SubscriptionResponse)
	return resp, args.Error(1)
}

func (m *subscriptionServiceMock) Status(ctx context.Context, workspaceID, actorID uuid.UUID) (*response_models.SubscriptionResponse, error) {
	args := m.Called(ctx, workspaceID, actorID)
	resp, _ := args.Get(0).(*response_models.SubscriptionResponse)
	return resp, args.Error(1)
}

func (m *subscriptionServiceMock) Cancel(ctx context.Context, workspaceID, actorID uuid.UUID, reason string) (*response_models.CancelSubscriptionResponse, error) {
	args := m.Called(ctx, workspaceID, actorID, reason)
	resp, _ := args.Get(0).(*response_models.CancelSubscriptionResponse)
	return resp, args.Error(1)
}

func (m *subscriptionServiceMock) Reconcile(ctx context.Context, workspaceID, actorID uuid.UUID, force bool) (*response_models.ReconcileResponse, error) {
	args := m.Called(ctx, workspaceID, actorID, force)
	resp, _ := args.Get(0).(*response_models.ReconcileResponse)
	return resp, args.Error(1)
}

func (m *subscriptionServiceMock) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	return m.Called(ctx, headers, body).Error(0)
}

func billingRouter(svc *subscriptionServiceMock, actor uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("account_id", actor)
		c.Next()
	})
	ctl := NewBillingController(svc)
	r.POST("/workspaces/:workspaceId/billing/cancel-subscription", ctl.CancelSubscription)
	r.POST("/workspaces/:workspaceId/billing/reconcile", ctl.ReconcileSubscription)
	r.POST("/billing/paypal/webhook", ctl.PayPalWebhook)
	return r
}

type cancelEnvelope struct {
	Status  string                                     `json:"status"`
	Code    int                                        `json:"code"`
	Message string                                     `json:"message"`
	Data    response_models.CancelSubscriptionResponse `json:"data"`
}

func TestCancelSubscription_StatusMapping(t *testing.T) {
	cases := []struct {
		status   billing.CancelStatus
		code     int
		envelope string
	}{
		{billing.CancelCancelled, http.StatusOK, "success"},
		{billing.CancelAlreadyCancelled, http.StatusOK, "success"},
		{billing.CancelPendingCancellation, http.StatusOK, "success"},
		{billing.CancelReconcileFailed, http.StatusAccepted, "success"},
		{billing.CancelNoSubscription, http.StatusNotFound, "error"},
		{billing.CancelNotPayPal, http.StatusConflict, "error"},
		{billing.CancelNotActive, http.StatusConflict, "error"},
		{billing.CancelAuthFailed, http.StatusBadGateway, "error"},
		{billing.CancelFailed, http.StatusBadGateway, "error"},
		{billing.CancelError, http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			ws, actor := uuid.New(), uuid.New()
			svc := &subscriptionServiceMock{}
			svc.On("Cancel", mock.Anything, ws, actor, "too pricey").Return(&response_models.CancelSubscriptionResponse{
				Status:  tc.status,
				Success: tc.status.Succeeded(),
				Message: "outcome " + string(tc.status),
			}, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/workspaces/"+ws.String()+"/billing/cancel-subscription",
				strings.NewReader(`{"reason":"too pricey"}`))
			req.Header.Set("Content-Type", "application/json")
			billingRouter(svc, actor).ServeHTTP(w, req)

			require.Equal(t, tc.code, w.Code)
			var body cancelEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.envelope, body.Status)
			assert.Equal(t, tc.status, body.Data.Status)
			assert.Equal(t, "outcome "+string(tc.status), body.Message)
			svc.AssertExpectations(t)
		})
	}
}

func TestCancelSubscription_EmptyBody(t *testing.T) {
	ws, actor := uuid.New(), uuid.New()
	svc := &subscriptionServiceMock{}
	svc.On("Cancel", mock.Anything, ws, actor, "").Return(&response_models.CancelSubscriptionResponse{
		Status:  billing.CancelPendingCancellation,
		Success: true,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/workspaces/"+ws.String()+"/billing/cancel-subscription", nil)
	billingRouter(svc, actor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCancelSubscription_AccessDenied(t *testing.T) {
	ws, actor := uuid.New(), uuid.New()
	svc := &subscriptionServiceMock{}
	svc.On("Cancel", mock.Anything, ws, actor, "").Return(nil, utils.ErrAccessDenied)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/workspaces/"+ws.String()+"/billing/cancel-subscription", nil)
	billingRouter(svc, actor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelSubscription_BadWorkspaceID(t *testing.T) {
	svc := &subscriptionServiceMock{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/workspaces/not-a-uuid/billing/cancel-subscription", nil)
	billingRouter(svc, uuid.New()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_UpstreamFailure(t *testing.T) {
	ws, actor := uuid.New(), uuid.New()
	svc := &subscriptionServiceMock{}
	svc.On("Reconcile", mock.Anything, ws, actor, true).Return(nil, utils.ErrUpstreamUnverified)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/workspaces/"+ws.String()+"/billing/reconcile", strings.NewReader(`{"force":true}`))
	req.Header.Set("Content-Type", "application/json")
	billingRouter(svc, actor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	svc.AssertExpectations(t)
}

func TestPayPalWebhook_PassesRawBody(t *testing.T) {
	payload := `{"event_type":"BILLING.SUBSCRIPTION.CANCELLED","resource":{"id":"I-1"}}`
	svc := &subscriptionServiceMock{}
	svc.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(h http.Header) bool {
		return h.Get("Paypal-Transmission-Id") == "tx-1"
	}), []byte(payload)).Return(nil).Once()
	svc.On("HandleWebhook", mock.Anything, mock.Anything, mock.Anything).Return(utils.ErrInvalidWebhook)

	router := billingRouter(svc, uuid.Nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/paypal/webhook", strings.NewReader(payload))
	req.Header.Set("Paypal-Transmission-Id", "tx-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/billing/paypal/webhook", strings.NewReader(payload))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

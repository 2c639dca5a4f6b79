package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"stepwise/internal/billing"
	"stepwise/internal/models/request_models"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

const maxWebhookBytes = 1 << 20

type BillingController struct {
	subscriptionService services.SubscriptionServiceInterface
}

func NewBillingController(subscriptionService services.SubscriptionServiceInterface) *BillingController {
	return &BillingController{subscriptionService: subscriptionService}
}

// ListPlans godoc
// @Summary List billing plans
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /billing/plans [get]
func (b *BillingController) ListPlans(c *gin.Context) {
	utils.RespondSuccess(c, billing.AllPlans(), "Plans fetched successfully")
}

// RegisterSubscription godoc
// @Summary Register a PayPal subscription
// @Description Stores the subscription approved on PayPal and reconciles it once
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.RegisterSubscriptionRequest true "Subscription payload"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/billing/subscription [post]
func (b *BillingController) RegisterSubscription(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.RegisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sub, err := b.subscriptionService.Register(c.Request.Context(), wsID, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, sub, "Subscription registered")
}

// SubscriptionStatus godoc
// @Summary Current subscription
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/billing/subscription [get]
func (b *BillingController) SubscriptionStatus(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	sub, err := b.subscriptionService.Status(c.Request.Context(), wsID, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sub, "Subscription fetched successfully")
}

// CancelSubscription godoc
// @Summary Cancel the PayPal subscription
// @Description Access continues until the PayPal billing period ends
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.CancelSubscriptionRequest false "Cancellation reason"
// @Success 200 {object} utils.APIResponse
// @Success 202 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/billing/cancel-subscription [post]
func (b *BillingController) CancelSubscription(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.CancelSubscriptionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	resp, err := b.subscriptionService.Cancel(c.Request.Context(), wsID, middleware.AccountID(c), req.Reason)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	code := cancelHTTPStatus(resp.Status)
	if code >= http.StatusBadRequest {
		utils.RespondErrorData(c, code, resp, resp.Message)
		return
	}
	utils.RespondStatus(c, code, resp, resp.Message)
}

// cancelHTTPStatus maps a cancel outcome onto the response code. The body always carries
// the outcome, so clients can branch on data.status alone.
func cancelHTTPStatus(s billing.CancelStatus) int {
	switch s {
	case billing.CancelCancelled, billing.CancelAlreadyCancelled, billing.CancelPendingCancellation:
		return http.StatusOK
	case billing.CancelReconcileFailed:
		return http.StatusAccepted
	case billing.CancelNoSubscription:
		return http.StatusNotFound
	case billing.CancelNotPayPal, billing.CancelNotActive:
		return http.StatusConflict
	case billing.CancelAuthFailed, billing.CancelFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ReconcileSubscription godoc
// @Summary Re-read the subscription from PayPal
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.ReconcileRequest false "Reconcile options"
// @Success 200 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/billing/reconcile [post]
func (b *BillingController) ReconcileSubscription(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.ReconcileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}
	resp, err := b.subscriptionService.Reconcile(c.Request.Context(), wsID, middleware.AccountID(c), req.Force)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, resp, "Subscription reconciled")
}

// PayPalWebhook godoc
// @Summary PayPal webhook receiver
// @Description Verifies the event signature with PayPal, then reconciles the subscription
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /billing/paypal/webhook [post]
func (b *BillingController) PayPalWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := b.subscriptionService.HandleWebhook(c.Request.Context(), c.Request.Header, body); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Webhook processed")
}

package response_models

import (
	"time"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
)

type SubscriptionResponse struct {
	ID                     string     `json:"id"`
	PlanID                 string     `json:"plan_id"`
	Provider               string     `json:"provider"`
	ProviderSubscriptionID string     `json:"provider_subscription_id"`
	Status                 string     `json:"status"`
	ProviderStatus         string     `json:"provider_status,omitempty"`
	CancelAtPeriodEnd      bool       `json:"cancel_at_period_end"`
	NextBillingTime        *time.Time `json:"next_billing_time"`
	FinalPaymentTime       *time.Time `json:"final_payment_time"`
	LastPaymentTime        *time.Time `json:"last_payment_time"`
	AccessGranted          bool       `json:"access_granted"`
	AccessReason           string     `json:"access_reason"`
}

func NewSubscriptionResponse(sub *db_models.Subscription, d billing.Decision) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                     sub.ID.String(),
		PlanID:                 sub.PlanID,
		Provider:               sub.Provider,
		ProviderSubscriptionID: sub.ProviderSubscriptionID,
		Status:                 string(sub.Status),
		ProviderStatus:         sub.ProviderStatus,
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
		NextBillingTime:        sub.NextBillingTime,
		FinalPaymentTime:       sub.FinalPaymentTime,
		LastPaymentTime:        sub.LastPaymentTime,
		AccessGranted:          d.Granted,
		AccessReason:           string(d.Reason),
	}
}

type CancelSubscriptionResponse struct {
	Status            billing.CancelStatus `json:"status"`
	Success           bool                 `json:"success"`
	Message           string               `json:"message"`
	CancelAtPeriodEnd bool                 `json:"cancel_at_period_end"`
	AccessGranted     *bool                `json:"access_granted,omitempty"`
	NextBillingTime   *time.Time           `json:"next_billing_time,omitempty"`
	FinalPaymentTime  *time.Time           `json:"final_payment_time,omitempty"`
}

type ReconcileResponse struct {
	Success       bool                  `json:"success"`
	Skipped       bool                  `json:"skipped"`
	Changed       bool                  `json:"changed"`
	AccessGranted bool                  `json:"access_granted"`
	Subscription  *SubscriptionResponse `json:"subscription,omitempty"`
}

type UploadResponse struct {
	URL         string `json:"url"`
	Provider    string `json:"provider"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

package request_models

type RegisterSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	PlanID         string `json:"plan_id" binding:"required,oneof=pro"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"max=127"`
}

type ReconcileRequest struct {
	Force bool `json:"force"`
}

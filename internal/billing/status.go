package billing

import (
	"strings"

	"stepwise/internal/models/db_models"
)

// MapProviderStatus translates a PayPal subscription status into the local status. Statuses
// with no local meaning (SUSPENDED, anything unknown) keep current.
func MapProviderStatus(provider string, current db_models.SubscriptionStatus) db_models.SubscriptionStatus {
	switch strings.ToUpper(strings.TrimSpace(provider)) {
	case "APPROVAL_PENDING", "APPROVED":
		return db_models.SubStatusPending
	case "ACTIVE":
		return db_models.SubStatusActive
	case "CANCELLED":
		return db_models.SubStatusCancelled
	case "EXPIRED":
		return db_models.SubStatusExpired
	default:
		return current
	}
}

// CancelStatus is the outcome reported by a cancel request.
type CancelStatus string

const (
	CancelNoSubscription      CancelStatus = "no_subscription"
	CancelNotPayPal           CancelStatus = "not_paypal"
	CancelAlreadyCancelled    CancelStatus = "already_cancelled"
	CancelPendingCancellation CancelStatus = "pending_cancellation"
	CancelNotActive           CancelStatus = "not_active"
	CancelAuthFailed          CancelStatus = "auth_failed"
	CancelFailed              CancelStatus = "cancel_failed"
	CancelReconcileFailed     CancelStatus = "reconcile_failed"
	CancelCancelled           CancelStatus = "cancelled"
	CancelError               CancelStatus = "error"
)

// Succeeded reports whether the provider acknowledged the cancellation or nothing needed doing.
func (s CancelStatus) Succeeded() bool {
	switch s {
	case CancelCancelled, CancelAlreadyCancelled, CancelPendingCancellation:
		return true
	}
	return false
}

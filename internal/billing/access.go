// Package billing decides subscription access and plan entitlements from the timestamps the
// payment provider reports.
package billing

import (
	"time"

	"stepwise/internal/models/db_models"
)

// AccessGranted reports whether a subscriber may use paid features at now. Access holds while
// now is strictly before the provider's next billing time or strictly before its final
// payment time. Either timestamp alone suffices; absent timestamps never grant access.
func AccessGranted(now time.Time, nextBillingTime, finalPaymentTime *time.Time) bool {
	if nextBillingTime != nil && now.Before(*nextBillingTime) {
		return true
	}
	return finalPaymentTime != nil && now.Before(*finalPaymentTime)
}

type Reason string

const (
	ReasonNoSubscription Reason = "no_subscription"
	ReasonBeforeNext     Reason = "before_next_billing_time"
	ReasonBeforeFinal    Reason = "before_final_payment_time"
	ReasonNoTimestamps   Reason = "no_provider_timestamps"
	ReasonLapsed         Reason = "provider_timestamps_passed"
)

type Decision struct {
	Granted bool
	Reason  Reason
}

// Evaluate applies AccessGranted to a stored subscription and names the deciding timestamp.
func Evaluate(now time.Time, sub *db_models.Subscription) Decision {
	if sub == nil {
		return Decision{Reason: ReasonNoSubscription}
	}
	next, final := sub.NextBillingTime, sub.FinalPaymentTime
	granted := AccessGranted(now, next, final)
	switch {
	case granted && next != nil && now.Before(*next):
		return Decision{Granted: true, Reason: ReasonBeforeNext}
	case granted:
		return Decision{Granted: true, Reason: ReasonBeforeFinal}
	case next == nil && final == nil:
		return Decision{Reason: ReasonNoTimestamps}
	default:
		return Decision{Reason: ReasonLapsed}
	}
}

package billing

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrProviderAuth is returned when the provider rejects the client credentials or the access
// token they produced.
var ErrProviderAuth = errors.New("billing: provider authentication failed")

// BillingInfo is what the provider reports about a subscription. Zero timestamps are nil.
type BillingInfo struct {
	Status           string
	NextBillingTime  *time.Time
	FinalPaymentTime *time.Time
	LastPaymentTime  *time.Time
}

// Provider is the payment provider as the subscription code sees it.
type Provider interface {
	// CancelSubscription asks the provider to cancel and returns its HTTP status code.
	CancelSubscription(ctx context.Context, providerSubscriptionID, reason string) (int, error)
	GetBillingInfo(ctx context.Context, providerSubscriptionID string) (BillingInfo, error)
	VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (bool, error)
}

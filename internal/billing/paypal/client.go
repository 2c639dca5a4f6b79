// Package paypal talks to the PayPal subscriptions REST API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"stepwise/internal/billing"
)

const (
	SandboxURL = "https://api-m.sandbox.paypal.com"
	LiveURL    = "https://api-m.paypal.com"
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
	Timeout      time.Duration
}

// Client implements billing.Provider. Access tokens are fetched with the client-credentials
// grant under the caller's context and reused until they expire.
type Client struct {
	baseURL   string
	webhookID string
	http      *http.Client
	creds     clientcredentials.Config

	mu    sync.Mutex
	token *oauth2.Token
}

var _ billing.Provider = (*Client)(nil)

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = SandboxURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	return &Client{
		baseURL:   base,
		webhookID: cfg.WebhookID,
		http:      httpClient,
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     base + "/v1/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

type subscriptionResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	BillingInfo struct {
		NextBillingTime  *time.Time `json:"next_billing_time"`
		FinalPaymentTime *time.Time `json:"final_payment_time"`
		LastPayment      *struct {
			Time *time.Time `json:"time"`
		} `json:"last_payment"`
	} `json:"billing_info"`
}

// GetBillingInfo fetches GET /v1/billing/subscriptions/{id}.
func (c *Client) GetBillingInfo(ctx context.Context, id string) (billing.BillingInfo, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/v1/billing/subscriptions/"+url.PathEscape(id), nil)
	if err != nil {
		return billing.BillingInfo{}, fmt.Errorf("billing: get paypal subscription: %w", err)
	}
	if status != http.StatusOK {
		return billing.BillingInfo{}, fmt.Errorf("billing: get paypal subscription: unexpected status %d: %s", status, snippet(body))
	}

	var sub subscriptionResponse
	if err := json.Unmarshal(body, &sub); err != nil {
		return billing.BillingInfo{}, fmt.Errorf("billing: decode paypal subscription: %w", err)
	}
	info := billing.BillingInfo{
		Status:           sub.Status,
		NextBillingTime:  nonZero(sub.BillingInfo.NextBillingTime),
		FinalPaymentTime: nonZero(sub.BillingInfo.FinalPaymentTime),
	}
	if sub.BillingInfo.LastPayment != nil {
		info.LastPaymentTime = nonZero(sub.BillingInfo.LastPayment.Time)
	}
	return info, nil
}

// CancelSubscription posts to /v1/billing/subscriptions/{id}/cancel. PayPal answers 204 when it
// accepts the cancellation; any other status except 401 is returned to the caller unchanged.
func (c *Client) CancelSubscription(ctx context.Context, id, reason string) (int, error) {
	if reason == "" {
		reason = "Cancelled by customer"
	}
	payload, _ := json.Marshal(map[string]string{"reason": reason})
	status, _, err := c.do(ctx, http.MethodPost, "/v1/billing/subscriptions/"+url.PathEscape(id)+"/cancel", payload)
	if err != nil {
		return 0, fmt.Errorf("billing: cancel paypal subscription: %w", err)
	}
	return status, nil
}

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// VerifyWebhook asks PayPal to check the transmission signature of a webhook delivery.
func (c *Client) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (bool, error) {
	if c.webhookID == "" {
		return false, fmt.Errorf("billing: paypal webhook id is not configured")
	}
	if !json.Valid(body) {
		return false, nil
	}
	payload, err := json.Marshal(verifyRequest{
		AuthAlgo:         headers.Get("PAYPAL-AUTH-ALGO"),
		CertURL:          headers.Get("PAYPAL-CERT-URL"),
		TransmissionID:   headers.Get("PAYPAL-TRANSMISSION-ID"),
		TransmissionSig:  headers.Get("PAYPAL-TRANSMISSION-SIG"),
		TransmissionTime: headers.Get("PAYPAL-TRANSMISSION-TIME"),
		WebhookID:        c.webhookID,
		WebhookEvent:     body,
	})
	if err != nil {
		return false, fmt.Errorf("billing: encode webhook verification: %w", err)
	}

	status, resp, err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", payload)
	if err != nil {
		return false, fmt.Errorf("billing: verify paypal webhook: %w", err)
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("billing: verify paypal webhook: unexpected status %d: %s", status, snippet(resp))
	}
	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return false, fmt.Errorf("billing: decode webhook verification: %w", err)
	}
	return out.VerificationStatus == "SUCCESS", nil
}

// accessToken returns the cached token or fetches a new one bound to ctx.
func (c *Client) accessToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Valid() {
		return c.token, nil
	}
	tok, err := c.creds.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch access token: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", billing.ErrProviderAuth, err)
	}
	c.token = tok
	return tok, nil
}

func (c *Client) dropToken(tok *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == tok {
		c.token = nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.dropToken(tok)
		return resp.StatusCode, raw, fmt.Errorf("%w: %s %s answered 401: %s", billing.ErrProviderAuth, method, path, snippet(raw))
	}
	return resp.StatusCode, raw, nil
}

func nonZero(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit])
	}
	return string(b)
}

package billing_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/internal/billing"
	"stepwise/internal/billing/paypal"
	"stepwise/internal/config"
	"stepwise/internal/repositories"
	"stepwise/internal/services"
	mem "stepwise/pkg/memcache"
)

var Module = fx.Provide(
	provideSubscriptionRepo,
	providePayPalClient,
	provideMetrics,
	provideDeliveryLog,
	provideReconcileService,
	provideSubscriptionService,
)

func provideSubscriptionRepo(db *gorm.DB) repositories.SubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func providePayPalClient(cfg *config.Config, log *zap.Logger) billing.Provider {
	if cfg.PayPal.ClientID == "" || cfg.PayPal.ClientSecret == "" {
		log.Warn("paypal credentials missing, billing calls will fail with provider_error")
	}
	return paypal.NewClient(paypal.Config{
		BaseURL:      cfg.PayPal.BaseURL,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		WebhookID:    cfg.PayPal.WebhookID,
		Timeout:      cfg.PayPal.Timeout,
	})
}

func provideMetrics(reg prometheus.Registerer) (*billing.Metrics, error) {
	return billing.NewMetrics(reg)
}

func provideDeliveryLog() mem.DeliveryLog {
	return mem.NewDeliveries()
}

func provideReconcileService(
	subscriptions repositories.SubscriptionRepository,
	workspaces repositories.WorkspaceRepository,
	provider billing.Provider,
	metrics *billing.Metrics,
	log *zap.Logger,
) services.ReconcileServiceInterface {
	return services.NewReconcileService(subscriptions, workspaces, provider, metrics, log)
}

func provideSubscriptionService(
	subscriptions repositories.SubscriptionRepository,
	workspaces repositories.WorkspaceRepository,
	reconciler services.ReconcileServiceInterface,
	provider billing.Provider,
	metrics *billing.Metrics,
	deliveries mem.DeliveryLog,
	log *zap.Logger,
) services.SubscriptionServiceInterface {
	return services.NewSubscriptionService(subscriptions, workspaces, reconciler, provider, metrics, deliveries, log)
}

package portal_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/internal/config"
	"stepwise/internal/repositories"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

var Module = fx.Provide(
	provideAnalyticsRepo,
	provideAnalyticsService,
	providePortalService,
	provideRateLimiter,
)

func provideAnalyticsRepo(db *gorm.DB) repositories.AnalyticsRepository {
	return repositories.NewAnalyticsRepository(db)
}

func provideAnalyticsService(
	events repositories.AnalyticsRepository,
	walkthroughs repositories.WalkthroughRepository,
	workspaces repositories.WorkspaceRepository,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) services.AnalyticsServiceInterface {
	return services.NewAnalyticsService(events, walkthroughs, workspaces, tokens, log)
}

func providePortalService(
	workspaces repositories.WorkspaceRepository,
	walkthroughs repositories.WalkthroughRepository,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) services.PortalServiceInterface {
	return services.NewPortalService(workspaces, walkthroughs, tokens, log)
}

// provideRateLimiter guards the unauthenticated portal routes, keyed by client IP.
func provideRateLimiter(lc fx.Lifecycle, cfg *config.Config) *middleware.RateLimiter {
	limiter := middleware.NewRateLimiter(cfg.PortalRateLimit, cfg.PortalBurst)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			limiter.Stop()
			return nil
		},
	})
	return limiter
}

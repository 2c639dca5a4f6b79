package walkthrough_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/internal/repositories"
	"stepwise/internal/services"
)

var Module = fx.Provide(
	provideWalkthroughRepo, provideVersionRepo,
	provideWalkthroughService, provideVersionService,
)

func provideWalkthroughRepo(db *gorm.DB) repositories.WalkthroughRepository {
	return repositories.NewWalkthroughRepository(db)
}

func provideVersionRepo(db *gorm.DB) repositories.VersionRepository {
	return repositories.NewVersionRepository(db)
}

func provideWalkthroughService(
	walkthroughs repositories.WalkthroughRepository,
	categories repositories.CategoryRepository,
	workspaces repositories.WorkspaceRepository,
	subscriptions repositories.SubscriptionRepository,
	log *zap.Logger,
) services.WalkthroughServiceInterface {
	return services.NewWalkthroughService(walkthroughs, categories, workspaces, subscriptions, log)
}

func provideVersionService(
	walkthroughs repositories.WalkthroughRepository,
	versions repositories.VersionRepository,
	workspaces repositories.WorkspaceRepository,
	log *zap.Logger,
) services.VersionServiceInterface {
	return services.NewVersionService(walkthroughs, versions, workspaces, log)
}

package workspace_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/internal/repositories"
	"stepwise/internal/services"
)

var Module = fx.Provide(
	provideWorkspaceRepo, provideCategoryRepo,
	provideWorkspaceService, provideCategoryService,
)

func provideWorkspaceRepo(db *gorm.DB) repositories.WorkspaceRepository {
	return repositories.NewWorkspaceRepository(db)
}

func provideCategoryRepo(db *gorm.DB) repositories.CategoryRepository {
	return repositories.NewCategoryRepository(db)
}

func provideWorkspaceService(
	workspaces repositories.WorkspaceRepository,
	accounts repositories.AccountRepository,
	walkthroughs repositories.WalkthroughRepository,
	subscriptions repositories.SubscriptionRepository,
	log *zap.Logger,
) services.WorkspaceServiceInterface {
	return services.NewWorkspaceService(workspaces, accounts, walkthroughs, subscriptions, log)
}

func provideCategoryService(categories repositories.CategoryRepository, workspaces repositories.WorkspaceRepository) services.CategoryServiceInterface {
	return services.NewCategoryService(categories, workspaces)
}

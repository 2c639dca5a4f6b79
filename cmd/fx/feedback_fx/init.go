package feedback_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/internal/repositories"
	"stepwise/internal/services"
	"stepwise/pkg/utils"
)

var Module = fx.Provide(
	provideFeedbackRepo, provideFeedbackService,
)

func provideFeedbackRepo(db *gorm.DB) repositories.FeedbackRepositoryInterface {
	return repositories.NewFeedbackRepository(db)
}

func provideFeedbackService(
	feedbackRepo repositories.FeedbackRepositoryInterface,
	walkthroughs repositories.WalkthroughRepository,
	workspaces repositories.WorkspaceRepository,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) services.FeedbackServiceInterface {
	return services.NewFeedbackService(feedbackRepo, walkthroughs, workspaces, tokens, log)
}

package controllers_fx

import (
	"go.uber.org/fx"

	"stepwise/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewWorkspaceController),
	fx.Provide(controllers.NewCategoryController),
	fx.Provide(controllers.NewWalkthroughController),
	fx.Provide(controllers.NewVersionController),
	fx.Provide(controllers.NewBillingController),
	fx.Provide(controllers.NewUploadController),
	fx.Provide(controllers.NewPortalController),
	fx.Provide(controllers.NewAnalyticsController),
	fx.Provide(controllers.NewFeedbackController))

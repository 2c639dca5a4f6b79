package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stepwise/internal/api/controllers"
	"stepwise/internal/config"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type Controllers struct {
	Account     *controllers.AccountController
	Workspace   *controllers.WorkspaceController
	Category    *controllers.CategoryController
	Walkthrough *controllers.WalkthroughController
	Version     *controllers.VersionController
	Billing     *controllers.BillingController
	Upload      *controllers.UploadController
	Portal      *controllers.PortalController
	Analytics   *controllers.AnalyticsController
	Feedback    *controllers.FeedbackController
}

type routerParams struct {
	fx.In

	Config   *config.Config
	Log      *zap.Logger
	Tokens   *utils.TokenIssuer
	Registry *prometheus.Registry
	Limiter  *middleware.RateLimiter

	Account     *controllers.AccountController
	Workspace   *controllers.WorkspaceController
	Category    *controllers.CategoryController
	Walkthrough *controllers.WalkthroughController
	Version     *controllers.VersionController
	Billing     *controllers.BillingController
	Upload      *controllers.UploadController
	Portal      *controllers.PortalController
	Analytics   *controllers.AnalyticsController
	Feedback    *controllers.FeedbackController
}

func ProvideRouter(p routerParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Log))
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = p.Config.CORSOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization", "X-Trace-ID", middleware.PortalTokenHdr)
	corsCfg.AddExposeHeaders("X-Trace-ID")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, gin.H{"status": "ok"}, "healthy")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))
	r.StaticFS("/uploads", http.Dir(p.Config.UploadDir))

	RegisterRoutes(r, p.Tokens, p.Limiter, Controllers{
		Account:     p.Account,
		Workspace:   p.Workspace,
		Category:    p.Category,
		Walkthrough: p.Walkthrough,
		Version:     p.Version,
		Billing:     p.Billing,
		Upload:      p.Upload,
		Portal:      p.Portal,
		Analytics:   p.Analytics,
		Feedback:    p.Feedback,
	})
	return r
}

func RegisterRoutes(r *gin.Engine, tokens *utils.TokenIssuer, limiter *middleware.RateLimiter, ctl Controllers) {
	auth := middleware.JWTAuthMiddleware(tokens)

	accounts := r.Group("/accounts")
	accounts.POST("/register", ctl.Account.Register)
	accounts.POST("/login", ctl.Account.Login)
	accounts.POST("/logout", ctl.Account.Logout)
	accounts.GET("/me", auth, ctl.Account.Me)

	workspaces := r.Group("/workspaces", auth)
	workspaces.POST("", ctl.Workspace.CreateWorkspace)
	workspaces.GET("", ctl.Workspace.ListWorkspaces)
	workspaces.GET("/:workspaceId", ctl.Workspace.GetWorkspace)
	workspaces.PUT("/:workspaceId", ctl.Workspace.RenameWorkspace)
	workspaces.POST("/:workspaceId/members", ctl.Workspace.AddMember)
	workspaces.DELETE("/:workspaceId/members/:accountId", ctl.Workspace.RemoveMember)
	workspaces.GET("/:workspaceId/entitlements", ctl.Workspace.Entitlements)

	workspaces.POST("/:workspaceId/categories", ctl.Category.CreateCategory)
	workspaces.GET("/:workspaceId/categories", ctl.Category.ListCategories)
	workspaces.PUT("/:workspaceId/categories/:categoryId", ctl.Category.UpdateCategory)
	workspaces.DELETE("/:workspaceId/categories/:categoryId", ctl.Category.DeleteCategory)

	workspaces.POST("/:workspaceId/walkthroughs", ctl.Walkthrough.CreateWalkthrough)
	workspaces.GET("/:workspaceId/walkthroughs", ctl.Walkthrough.ListWalkthroughs)

	workspaces.POST("/:workspaceId/billing/subscription", ctl.Billing.RegisterSubscription)
	workspaces.GET("/:workspaceId/billing/subscription", ctl.Billing.SubscriptionStatus)
	workspaces.POST("/:workspaceId/billing/cancel-subscription", ctl.Billing.CancelSubscription)
	workspaces.POST("/:workspaceId/billing/reconcile", ctl.Billing.ReconcileSubscription)

	workspaces.POST("/:workspaceId/uploads", ctl.Upload.Upload)
	workspaces.GET("/:workspaceId/analytics", ctl.Analytics.Summary)

	walkthroughs := r.Group("/walkthroughs", auth)
	walkthroughs.GET("/:id", ctl.Walkthrough.GetWalkthrough)
	walkthroughs.PUT("/:id", ctl.Walkthrough.UpdateWalkthrough)
	walkthroughs.DELETE("/:id", ctl.Walkthrough.DeleteWalkthrough)
	walkthroughs.POST("/:id/publish", ctl.Walkthrough.PublishWalkthrough)
	walkthroughs.POST("/:id/archive", ctl.Walkthrough.ArchiveWalkthrough)
	walkthroughs.POST("/:id/unarchive", ctl.Walkthrough.UnarchiveWalkthrough)
	walkthroughs.POST("/:id/steps", ctl.Walkthrough.AddStep)
	walkthroughs.PUT("/:id/steps/reorder", ctl.Walkthrough.ReorderSteps)
	walkthroughs.PUT("/:id/steps/:stepId", ctl.Walkthrough.UpdateStep)
	walkthroughs.DELETE("/:id/steps/:stepId", ctl.Walkthrough.DeleteStep)

	walkthroughs.GET("/:id/versions", ctl.Version.ListVersions)
	walkthroughs.GET("/:id/versions/:version", ctl.Version.GetVersion)
	walkthroughs.POST("/:id/rollback/:version", ctl.Version.Rollback)
	walkthroughs.POST("/:id/recover-blocks", ctl.Version.RecoverBlocks)
	walkthroughs.GET("/:id/feedback", ctl.Feedback.ListFeedback)

	r.GET("/billing/plans", ctl.Billing.ListPlans)
	// PayPal calls this without a session; the signature is verified with PayPal instead.
	r.POST("/billing/paypal/webhook", ctl.Billing.PayPalWebhook)

	portal := r.Group("/portal/:workspaceSlug", limiter.Middleware())
	portal.GET("/walkthroughs", ctl.Portal.ListPublished)
	portal.GET("/walkthroughs/:slug", ctl.Portal.GetPublished)
	portal.POST("/walkthroughs/:slug/unlock", ctl.Portal.Unlock)
	portal.POST("/walkthroughs/:slug/events", ctl.Portal.RecordEvent)
	portal.POST("/walkthroughs/:slug/feedback", ctl.Portal.SubmitFeedback)
}

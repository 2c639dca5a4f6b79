package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stepwise/internal/models/request_models"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

// PortalController serves the public help center. None of its routes need a session.
type PortalController struct {
	portalService    services.PortalServiceInterface
	analyticsService services.AnalyticsServiceInterface
	feedbackService  services.FeedbackServiceInterface
}

func NewPortalController(
	portalService services.PortalServiceInterface,
	analyticsService services.AnalyticsServiceInterface,
	feedbackService services.FeedbackServiceInterface,
) *PortalController {
	return &PortalController{
		portalService:    portalService,
		analyticsService: analyticsService,
		feedbackService:  feedbackService,
	}
}

// ListPublished godoc
// @Summary List the public walkthroughs of a workspace
// @Tags Portal
// @Produce json
// @Param workspaceSlug path string true "Workspace slug"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /portal/{workspaceSlug}/walkthroughs [get]
func (p *PortalController) ListPublished(c *gin.Context) {
	list, err := p.portalService.ListPublished(c.Request.Context(), c.Param("workspaceSlug"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Walkthroughs fetched successfully")
}

// GetPublished godoc
// @Summary Read a public walkthrough
// @Description Password protected walkthroughs need the token returned by unlock
// @Tags Portal
// @Produce json
// @Param workspaceSlug path string true "Workspace slug"
// @Param slug path string true "Walkthrough slug"
// @Param X-Portal-Token header string false "Portal token"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /portal/{workspaceSlug}/walkthroughs/{slug} [get]
func (p *PortalController) GetPublished(c *gin.Context) {
	w, err := p.portalService.Get(c.Request.Context(), c.Param("workspaceSlug"), c.Param("slug"), middleware.PortalToken(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, w, "Walkthrough fetched successfully")
}

// Unlock godoc
// @Summary Unlock a password protected walkthrough
// @Tags Portal
// @Accept json
// @Produce json
// @Param workspaceSlug path string true "Workspace slug"
// @Param slug path string true "Walkthrough slug"
// @Param request body request_models.UnlockRequest true "Password"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /portal/{workspaceSlug}/walkthroughs/{slug}/unlock [post]
func (p *PortalController) Unlock(c *gin.Context) {
	var req request_models.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	token, err := p.portalService.Unlock(c.Request.Context(), c.Param("workspaceSlug"), c.Param("slug"), req.Password)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, token, "Walkthrough unlocked")
}

// RecordEvent godoc
// @Summary Record a viewer event
// @Tags Portal
// @Accept json
// @Produce json
// @Param workspaceSlug path string true "Workspace slug"
// @Param slug path string true "Walkthrough slug"
// @Param request body request_models.AnalyticsEventRequest true "Event"
// @Success 202 {object} utils.APIResponse
// @Router /portal/{workspaceSlug}/walkthroughs/{slug}/events [post]
func (p *PortalController) RecordEvent(c *gin.Context) {
	var req request_models.AnalyticsEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	err := p.analyticsService.Record(c.Request.Context(), c.Param("workspaceSlug"), c.Param("slug"), middleware.PortalToken(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusAccepted, nil, "Event recorded")
}

// SubmitFeedback godoc
// @Summary Rate a walkthrough
// @Tags Portal
// @Accept json
// @Produce json
// @Param workspaceSlug path string true "Workspace slug"
// @Param slug path string true "Walkthrough slug"
// @Param request body request_models.AddFeedbackRequest true "Feedback"
// @Success 201 {object} utils.APIResponse
// @Router /portal/{workspaceSlug}/walkthroughs/{slug}/feedback [post]
func (p *PortalController) SubmitFeedback(c *gin.Context) {
	var req request_models.AddFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	feedback, err := p.feedbackService.Submit(c.Request.Context(), c.Param("workspaceSlug"), c.Param("slug"), middleware.PortalToken(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, feedback, "Thanks for your feedback")
}

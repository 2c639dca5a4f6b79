package controllers

import (
	"github.com/gin-gonic/gin"

	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type FeedbackController struct {
	feedbackService services.FeedbackServiceInterface
}

func NewFeedbackController(feedbackService services.FeedbackServiceInterface) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// ListFeedback godoc
// @Summary List feedback for a walkthrough
// @Description Get a paginated list of ratings left by portal viewers, newest first
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /walkthroughs/{id}/feedback [get]
func (f *FeedbackController) ListFeedback(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	page, err := utils.ParsePage(c)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	feedback, err := f.feedbackService.List(c.Request.Context(), id, middleware.AccountID(c), page)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, feedback, "Feedback fetched successfully")
}

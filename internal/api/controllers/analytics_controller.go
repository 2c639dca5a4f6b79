package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type AnalyticsController struct {
	analyticsService services.AnalyticsServiceInterface
}

func NewAnalyticsController(analyticsService services.AnalyticsServiceInterface) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// Summary godoc
// @Summary Views and completions per walkthrough
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param days query int false "Window in days (default 30)"
// @Success 200 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/analytics [get]
func (a *AnalyticsController) Summary(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.RespondErrorData(c, http.StatusBadRequest, gin.H{"field": "days"}, "Invalid days")
			return
		}
		days = n
	}
	summary, err := a.analyticsService.Summary(c.Request.Context(), wsID, middleware.AccountID(c), days)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, summary, "Analytics fetched successfully")
}

package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/repositories"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type WalkthroughController struct {
	walkthroughService services.WalkthroughServiceInterface
}

func NewWalkthroughController(walkthroughService services.WalkthroughServiceInterface) *WalkthroughController {
	return &WalkthroughController{walkthroughService: walkthroughService}
}

// CreateWalkthrough godoc
// @Summary Create a walkthrough
// @Description Creates a draft; the workspace's effective plan limits how many may exist
// @Tags Walkthroughs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.CreateWalkthroughRequest true "Walkthrough payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/walkthroughs [post]
func (w *WalkthroughController) CreateWalkthrough(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.CreateWalkthroughRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	walkthrough, err := w.walkthroughService.Create(c.Request.Context(), wsID, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, walkthrough, "Walkthrough created successfully")
}

// ListWalkthroughs godoc
// @Summary List walkthroughs of a workspace
// @Tags Walkthroughs
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param category query string false "Category ID"
// @Param status query string false "DRAFT or PUBLISHED"
// @Param archived query bool false "Archived filter"
// @Success 200 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/walkthroughs [get]
func (w *WalkthroughController) ListWalkthroughs(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	filter := repositories.WalkthroughFilter{
		CategoryID: c.Query("category"),
		Status:     db_models.WalkthroughStatus(strings.ToUpper(c.Query("status"))),
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondErrorData(c, http.StatusBadRequest, gin.H{"field": "archived"}, "Invalid archived filter")
			return
		}
		filter.Archived = &archived
	}

	list, err := w.walkthroughService.List(c.Request.Context(), wsID, middleware.AccountID(c), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Walkthroughs fetched successfully")
}

// GetWalkthrough godoc
// @Summary Get a walkthrough
// @Tags Walkthroughs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /walkthroughs/{id} [get]
func (w *WalkthroughController) GetWalkthrough(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	walkthrough, err := w.walkthroughService.Get(c.Request.Context(), id, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Walkthrough fetched successfully")
}

// UpdateWalkthrough godoc
// @Summary Update a walkthrough
// @Description Publishing through status snapshots the previous state first
// @Tags Walkthroughs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param request body request_models.UpdateWalkthroughRequest true "Walkthrough payload"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /walkthroughs/{id} [put]
func (w *WalkthroughController) UpdateWalkthrough(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.UpdateWalkthroughRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	walkthrough, err := w.walkthroughService.Update(c.Request.Context(), id, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Walkthrough updated successfully")
}

// PublishWalkthrough godoc
// @Summary Publish a walkthrough
// @Tags Walkthroughs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/publish [post]
func (w *WalkthroughController) PublishWalkthrough(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	walkthrough, err := w.walkthroughService.Publish(c.Request.Context(), id, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Walkthrough published successfully")
}

// ArchiveWalkthrough godoc
// @Summary Archive a walkthrough
// @Tags Walkthroughs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/archive [post]
func (w *WalkthroughController) ArchiveWalkthrough(c *gin.Context) {
	w.setArchived(c, true, "Walkthrough archived successfully")
}

// UnarchiveWalkthrough godoc
// @Summary Unarchive a walkthrough
// @Tags Walkthroughs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/unarchive [post]
func (w *WalkthroughController) UnarchiveWalkthrough(c *gin.Context) {
	w.setArchived(c, false, "Walkthrough restored successfully")
}

func (w *WalkthroughController) setArchived(c *gin.Context, archived bool, message string) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	walkthrough, err := w.walkthroughService.SetArchived(c.Request.Context(), id, middleware.AccountID(c), archived)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, message)
}

// DeleteWalkthrough godoc
// @Summary Delete a walkthrough
// @Tags Walkthroughs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id} [delete]
func (w *WalkthroughController) DeleteWalkthrough(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := w.walkthroughService.Delete(c.Request.Context(), id, middleware.AccountID(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Walkthrough deleted successfully")
}

// AddStep godoc
// @Summary Add a step
// @Tags Steps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param request body request_models.StepRequest true "Step payload"
// @Success 201 {object} utils.APIResponse
// @Router /walkthroughs/{id}/steps [post]
func (w *WalkthroughController) AddStep(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	walkthrough, err := w.walkthroughService.AddStep(c.Request.Context(), id, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, walkthrough, "Step added successfully")
}

// UpdateStep godoc
// @Summary Update a step
// @Description Incoming blocks are merged by id with the stored ones
// @Tags Steps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param stepId path string true "Step ID"
// @Param request body request_models.UpdateStepRequest true "Step payload"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/steps/{stepId} [put]
func (w *WalkthroughController) UpdateStep(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	walkthrough, err := w.walkthroughService.UpdateStep(c.Request.Context(), id, middleware.AccountID(c), c.Param("stepId"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Step updated successfully")
}

// DeleteStep godoc
// @Summary Delete a step
// @Tags Steps
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param stepId path string true "Step ID"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/steps/{stepId} [delete]
func (w *WalkthroughController) DeleteStep(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	walkthrough, err := w.walkthroughService.DeleteStep(c.Request.Context(), id, middleware.AccountID(c), c.Param("stepId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Step deleted successfully")
}

// ReorderSteps godoc
// @Summary Reorder steps
// @Description step_ids must list every step exactly once
// @Tags Steps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param request body request_models.ReorderStepsRequest true "New order"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/steps/reorder [put]
func (w *WalkthroughController) ReorderSteps(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.ReorderStepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	walkthrough, err := w.walkthroughService.ReorderSteps(c.Request.Context(), id, middleware.AccountID(c), req.StepIDs)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Steps reordered successfully")
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stepwise/internal/models/request_models"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type WorkspaceController struct {
	workspaceService services.WorkspaceServiceInterface
}

func NewWorkspaceController(workspaceService services.WorkspaceServiceInterface) *WorkspaceController {
	return &WorkspaceController{workspaceService: workspaceService}
}

// CreateWorkspace godoc
// @Summary Create a workspace
// @Description The caller becomes its owner; new workspaces start on the free plan
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request_models.CreateWorkspaceRequest true "Workspace payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /workspaces [post]
func (w *WorkspaceController) CreateWorkspace(c *gin.Context) {
	var req request_models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	ws, err := w.workspaceService.Create(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, ws, "Workspace created successfully")
}

// ListWorkspaces godoc
// @Summary List my workspaces
// @Tags Workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.APIResponse
// @Router /workspaces [get]
func (w *WorkspaceController) ListWorkspaces(c *gin.Context) {
	list, err := w.workspaceService.ListMine(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Workspaces fetched successfully")
}

// GetWorkspace godoc
// @Summary Get a workspace with its members
// @Tags Workspaces
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{workspaceId} [get]
func (w *WorkspaceController) GetWorkspace(c *gin.Context) {
	id, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	ws, err := w.workspaceService.Get(c.Request.Context(), id, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, ws, "Workspace fetched successfully")
}

// RenameWorkspace godoc
// @Summary Rename a workspace
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.UpdateWorkspaceRequest true "Workspace payload"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{workspaceId} [put]
func (w *WorkspaceController) RenameWorkspace(c *gin.Context) {
	id, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	ws, err := w.workspaceService.Rename(c.Request.Context(), id, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, ws, "Workspace updated successfully")
}

// AddMember godoc
// @Summary Add a member by email
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.AddMemberRequest true "Member payload"
// @Success 201 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/members [post]
func (w *WorkspaceController) AddMember(c *gin.Context) {
	id, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	member, err := w.workspaceService.AddMember(c.Request.Context(), id, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, member, "Member added successfully")
}

// RemoveMember godoc
// @Summary Remove a member
// @Tags Workspaces
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param accountId path string true "Account ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/members/{accountId} [delete]
func (w *WorkspaceController) RemoveMember(c *gin.Context) {
	id, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "accountId")
	if !ok {
		return
	}
	if err := w.workspaceService.RemoveMember(c.Request.Context(), id, middleware.AccountID(c), memberID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Member removed successfully")
}

// Entitlements godoc
// @Summary Effective plan of a workspace
// @Description Paid limits apply only while PayPal's billing timestamps grant access
// @Tags Workspaces
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/entitlements [get]
func (w *WorkspaceController) Entitlements(c *gin.Context) {
	id, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	ent, err := w.workspaceService.Entitlements(c.Request.Context(), id, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, ent, "Entitlements fetched successfully")
}

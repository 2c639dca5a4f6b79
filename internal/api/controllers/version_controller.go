package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stepwise/internal/models/request_models"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type VersionController struct {
	versionService services.VersionServiceInterface
}

func NewVersionController(versionService services.VersionServiceInterface) *VersionController {
	return &VersionController{versionService: versionService}
}

// ListVersions godoc
// @Summary List snapshots of a walkthrough
// @Tags Versions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/versions [get]
func (v *VersionController) ListVersions(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	list, err := v.versionService.ListVersions(c.Request.Context(), id, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Versions fetched successfully")
}

// GetVersion godoc
// @Summary Get one snapshot
// @Tags Versions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param version path int true "Version number"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /walkthroughs/{id}/versions/{version} [get]
func (v *VersionController) GetVersion(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	version, ok := intParam(c, "version")
	if !ok {
		return
	}
	snap, err := v.versionService.GetVersion(c.Request.Context(), id, middleware.AccountID(c), version)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, snap, "Version fetched successfully")
}

// Rollback godoc
// @Summary Roll back to a snapshot
// @Description Restores content from the snapshot; the live icon and version number are kept
// @Tags Versions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param version path int true "Version number"
// @Success 200 {object} utils.APIResponse
// @Router /walkthroughs/{id}/rollback/{version} [post]
func (v *VersionController) Rollback(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	version, ok := intParam(c, "version")
	if !ok {
		return
	}
	walkthrough, err := v.versionService.Rollback(c.Request.Context(), id, middleware.AccountID(c), version)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, walkthrough, "Walkthrough rolled back successfully")
}

// RecoverBlocks godoc
// @Summary Recover lost media blocks
// @Description Copies image URLs back from a snapshot into blocks that lost them
// @Tags Versions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Walkthrough ID"
// @Param request body request_models.RecoverBlocksRequest false "Source version"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /walkthroughs/{id}/recover-blocks [post]
func (v *VersionController) RecoverBlocks(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.RecoverBlocksRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}
	result, err := v.versionService.RecoverBlocks(c.Request.Context(), id, middleware.AccountID(c), req.Version)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "Recovery finished")
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stepwise/internal/models/request_models"
	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type CategoryController struct {
	categoryService services.CategoryServiceInterface
}

func NewCategoryController(categoryService services.CategoryServiceInterface) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// CreateCategory godoc
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param request body request_models.CategoryRequest true "Category payload"
// @Success 201 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/categories [post]
func (ctl *CategoryController) CreateCategory(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	var req request_models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	category, err := ctl.categoryService.Create(c.Request.Context(), wsID, middleware.AccountID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, category, "Category created successfully")
}

// ListCategories godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/categories [get]
func (ctl *CategoryController) ListCategories(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	list, err := ctl.categoryService.List(c.Request.Context(), wsID, middleware.AccountID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Categories fetched successfully")
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param categoryId path string true "Category ID"
// @Param request body request_models.CategoryRequest true "Category payload"
// @Success 200 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/categories/{categoryId} [put]
func (ctl *CategoryController) UpdateCategory(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	categoryID, ok := uuidParam(c, "categoryId")
	if !ok {
		return
	}
	var req request_models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	category, err := ctl.categoryService.Update(c.Request.Context(), wsID, middleware.AccountID(c), categoryID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, category, "Category updated successfully")
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Walkthroughs keep existing; the category id is removed from them
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param categoryId path string true "Category ID"
// @Success 200 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/categories/{categoryId} [delete]
func (ctl *CategoryController) DeleteCategory(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	categoryID, ok := uuidParam(c, "categoryId")
	if !ok {
		return
	}
	if err := ctl.categoryService.Delete(c.Request.Context(), wsID, middleware.AccountID(c), categoryID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Category deleted successfully")
}

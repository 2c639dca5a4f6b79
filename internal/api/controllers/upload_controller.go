package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stepwise/internal/services"
	"stepwise/pkg/middleware"
	"stepwise/pkg/utils"
)

type UploadController struct {
	storageService services.StorageServiceInterface
}

func NewUploadController(storageService services.StorageServiceInterface) *UploadController {
	return &UploadController{storageService: storageService}
}

// Upload godoc
// @Summary Upload media for walkthrough blocks
// @Description Accepts images, videos and PDFs; the returned URL goes into a block's data
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param workspaceId path string true "Workspace ID"
// @Param file formData file true "Media file"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /workspaces/{workspaceId}/uploads [post]
func (u *UploadController) Upload(c *gin.Context) {
	wsID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, gin.H{"field": "file"}, "File is missing or too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, gin.H{"field": "file"}, "File could not be read")
		return
	}
	defer file.Close()

	result, err := u.storageService.Upload(c.Request.Context(), wsID, middleware.AccountID(c), header.Filename, file)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondStatus(c, http.StatusCreated, result, "File uploaded successfully")
}

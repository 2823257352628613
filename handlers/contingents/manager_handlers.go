package contingents

import (
	"errors"
	"net/http"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequestAccess asks to become a manager of a contingent
// @Summary Request to manage a contingent
// @Tags Contingents
// @Produce json
// @Param id path int true "Contingent ID"
// @Success 201 {object} models.ContingentRequest
// @Failure 404,409 {object} map[string]string
// @Router /participants/contingents/{id}/requests [post]
// @Security Bearer
func RequestAccess(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contingent models.Contingent
	if err := database.DB.First(&contingent, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContingentNotFound)
		return
	}

	request, err := services.RequestContingentAccess(database.DB, user.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyManager) || errors.Is(err, services.ErrRequestPending) {
			response.Error(c, http.StatusConflict, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetContingentRequests lists the pending requests of a managed contingent
// @Summary List requests of a contingent
// @Tags Contingents
// @Produce json
// @Param id path int true "Contingent ID"
// @Success 200 {array} models.ContingentRequest
// @Failure 403 {object} map[string]string
// @Router /participants/contingents/{id}/requests [get]
// @Security Bearer
func GetContingentRequests(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if !services.CanManageContingent(database.DB, user, id) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	requests := []models.ContingentRequest{}
	if err := database.DB.Preload("User").Where("contingent_id = ? AND status = ?", id, models.RequestStatusPending).
		Order("created_at").Find(&requests).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ReviewRequestHandler approves or rejects a request to manage a contingent
// @Summary Review a contingent request
// @Tags Contingents
// @Accept json
// @Produce json
// @Param id path int true "Contingent ID"
// @Param requestId path int true "Request ID"
// @Param review body ReviewRequest true "Decision"
// @Success 200 {object} models.ContingentRequest
// @Failure 403,404,409 {object} map[string]string
// @Router /participants/contingents/{id}/requests/{requestId} [put]
// @Security Bearer
func ReviewRequestHandler(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	requestID, ok := utils.ParseUintParam(c, "requestId")
	if !ok {
		return
	}
	if !services.CanManageContingent(database.DB, user, id) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	var req ReviewRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var existing models.ContingentRequest
	if err := database.DB.Where("id = ? AND contingent_id = ?", requestID, id).First(&existing).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrRequestNotFound)
		return
	}

	reviewed, err := services.ReviewContingentRequest(database.DB, requestID, req.Approve)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotPending) {
			response.Error(c, http.StatusConflict, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, reviewed)
}

// GetManagers lists the managers of a contingent
// @Summary List contingent managers
// @Tags Contingents
// @Produce json
// @Param id path int true "Contingent ID"
// @Success 200 {array} models.ContingentManager
// @Failure 403 {object} map[string]string
// @Router /participants/contingents/{id}/managers [get]
// @Security Bearer
func GetManagers(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if !services.CanManageContingent(database.DB, user, id) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	managers := []models.ContingentManager{}
	if err := database.DB.Preload("User").Where("contingent_id = ?", id).Order("is_owner DESC, id").Find(&managers).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
		return
	}
	c.JSON(http.StatusOK, managers)
}

// RemoveManager removes a co-manager from a contingent
// @Summary Remove a contingent manager
// @Tags Contingents
// @Param id path int true "Contingent ID"
// @Param userId path int true "User ID"
// @Success 204
// @Failure 400,403,404 {object} map[string]string
// @Router /participants/contingents/{id}/managers/{userId} [delete]
// @Security Bearer
func RemoveManager(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := utils.ParseUintParam(c, "userId")
	if !ok {
		return
	}
	if !services.CanManageContingent(database.DB, user, id) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	if err := services.RemoveContingentManager(database.DB, id, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerCannotBeRemoved):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "Manager not found")
		default:
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.Status(http.StatusNoContent)
}

package reference

import (
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

func (req *TargetGroupRequest) apply(group *models.TargetGroup) {
	group.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	group.Name = strings.TrimSpace(req.Name)
	group.SchoolLevel = strings.ToLower(req.SchoolLevel)
	group.MinAge = req.MinAge
	group.MaxAge = req.MaxAge
}

// CreateTargetGroup creates a target group
// @Summary Create a target group
// @Tags Reference
// @Accept json
// @Produce json
// @Param group body TargetGroupRequest true "Target group"
// @Success 201 {object} models.TargetGroup
// @Failure 400,500 {object} map[string]string
// @Router /organizer/reference/target-groups [post]
// @Security Bearer
func CreateTargetGroup(c *gin.Context) {
	var req TargetGroupRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if req.MaxAge > 0 && req.MaxAge < req.MinAge {
		response.Error(c, http.StatusBadRequest, ErrInvalidAgeRange)
		return
	}

	var group models.TargetGroup
	req.apply(&group)
	if err := database.DB.Create(&group).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// UpdateTargetGroup updates a target group
// @Summary Update a target group
// @Tags Reference
// @Accept json
// @Produce json
// @Param id path int true "Target group ID"
// @Param group body TargetGroupRequest true "Target group"
// @Success 200 {object} models.TargetGroup
// @Failure 400,404,500 {object} map[string]string
// @Router /organizer/reference/target-groups/{id} [put]
// @Security Bearer
func UpdateTargetGroup(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var group models.TargetGroup
	if err := database.DB.First(&group, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrTargetGroupNotFound)
		return
	}

	var req TargetGroupRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if req.MaxAge > 0 && req.MaxAge < req.MinAge {
		response.Error(c, http.StatusBadRequest, ErrInvalidAgeRange)
		return
	}

	req.apply(&group)
	if err := database.DB.Save(&group).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteTargetGroup removes a target group no contest uses
// @Summary Delete a target group
// @Tags Reference
// @Param id path int true "Target group ID"
// @Success 204
// @Failure 404,409 {object} map[string]string
// @Router /organizer/reference/target-groups/{id} [delete]
// @Security Bearer
func DeleteTargetGroup(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var group models.TargetGroup
	if err := database.DB.First(&group, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrTargetGroupNotFound)
		return
	}

	var used int64
	database.DB.Table("contest_target_groups").Where("target_group_id = ?", id).Count(&used)
	if used > 0 {
		response.Error(c, http.StatusConflict, ErrTargetGroupInUse)
		return
	}
	if err := database.DB.Delete(&group).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.Status(http.StatusNoContent)
}

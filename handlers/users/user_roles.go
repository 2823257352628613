package users

import (
	"net/http"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// roleCount is one row of the role summary
type roleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

var allRoles = []string{
	models.RoleAdmin,
	models.RoleOperator,
	models.RoleViewer,
	models.RoleParticipantsManager,
	models.RoleJudge,
	models.RoleParticipant,
}

// GetRoles lists every role with the number of accounts holding it
// @Summary List roles
// @Tags Users
// @Produce json
// @Success 200 {array} roleCount
// @Router /organizer/users/roles [get]
// @Security Bearer
func GetRoles(c *gin.Context) {
	var rows []roleCount
	if err := database.DB.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetUsers)
		return
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}

	result := make([]roleCount, 0, len(allRoles))
	for _, role := range allRoles {
		result = append(result, roleCount{Role: role, Count: counts[role]})
	}
	c.JSON(http.StatusOK, result)
}

// UpdateUserRole changes the role of an account
// @Summary Update a user's role
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param role body RoleRequest true "Role"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/users/{id}/role [put]
// @Security Bearer
func UpdateUserRole(c *gin.Context) {
	currentUser, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	target, ok := findUser(c)
	if !ok {
		return
	}
	var req RoleRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if target.ID == currentUser.ID {
		response.Error(c, http.StatusBadRequest, ErrCannotModifySelf)
		return
	}

	target.Role = req.Role
	if err := database.DB.Model(target).Update("role", req.Role).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdateUser)
		return
	}
	c.JSON(http.StatusOK, target)
}

package users

import (
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// GetUserProfile returns the authenticated user's profile
// @Summary Get user profile
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Router /profile [get]
// @Security Bearer
func GetUserProfile(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserProfile updates the authenticated user's name, email and phone
// @Summary Update user profile
// @Tags Users
// @Accept json
// @Produce json
// @Param profile body ProfileUpdate true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /profile [put]
// @Security Bearer
func UpdateUserProfile(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	var req ProfileUpdate
	if !utils.BindJSON(c, &req) {
		return
	}

	if msg := conflictMessage(database.DB, req.Email, "", user.ID); msg != "" {
		response.Error(c, http.StatusConflict, msg)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			response.Error(c, http.StatusInternalServerError, ErrFailedToUpdateUser)
			return
		}
	}

	var updated models.User
	if err := database.DB.First(&updated, user.ID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetUsers)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateUserPassword changes the authenticated user's password after checking the old one
// @Summary Update user password
// @Tags Users
// @Accept json
// @Produce json
// @Param passwords body PasswordUpdate true "Password Update"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /profile/password [put]
// @Security Bearer
func UpdateUserPassword(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	var req PasswordUpdate
	if !utils.BindJSON(c, &req) {
		return
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.Password) {
		response.Error(c, http.StatusBadRequest, ErrWrongPassword)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrHashPasswordFailed)
		return
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashedPassword).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdateUser)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgPasswordUpdated})
}

// ResetUserPassword sets another account's password back to the default password
// @Summary Reset a user's password
// @Tags Users
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/users/{id}/resetpass [put]
// @Security Bearer
func ResetUserPassword(c *gin.Context) {
	target, ok := findUser(c)
	if !ok {
		return
	}

	hashedPassword, err := utils.HashPassword(defaultPassword())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrHashPasswordFailed)
		return
	}
	if err := database.DB.Model(target).Update("password", hashedPassword).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdateUser)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
		"user_id": target.ID,
	})
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ResetTokenLifetime is how long a password reset token stays valid
const ResetTokenLifetime = time.Hour

// RequestPasswordReset initiates the password reset process
// @Summary Request Password Reset
// @Description Send a password reset link to the user's email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RequestPasswordResetRequest true "Email Request"
// @Success 200 {object} map[string]string
// @Failure 400,500 {object} map[string]string
// @Router /auth/request-reset [post]
func RequestPasswordReset(c *gin.Context) {
	var req RequestPasswordResetRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same answer for unknown emails
			c.JSON(http.StatusOK, gin.H{"message": MsgResetLinkSent})
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to process request")
		return
	}

	// Generate random token
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to generate reset token")
		return
	}
	token := hex.EncodeToString(b)

	// Replace any existing reset token of this user
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordReset{UserID: user.ID, Token: token}).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create reset token")
		return
	}

	emailService := services.NewEmailService(database.DB)
	if err := emailService.SendPasswordResetEmail(user.Email, token); err != nil {
		middleware.RequestLog(c).WithError(err).Error("Failed to send reset email")
		response.Error(c, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": MsgResetLinkSent})
}

// ResetPassword handles the password reset
// @Summary Reset Password
// @Description Reset user password using the reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset Request"
// @Success 200 {object} map[string]string
// @Failure 400,500 {object} map[string]string
// @Router /auth/reset-password [post]
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var resetEntry models.PasswordReset
	if err := database.DB.Where("token = ?", req.Token).First(&resetEntry).Error; err != nil {
		response.Error(c, http.StatusBadRequest, ErrResetTokenInvalid)
		return
	}

	if time.Since(resetEntry.CreatedAt) > ResetTokenLifetime {
		database.DB.Delete(&resetEntry)
		response.Error(c, http.StatusBadRequest, ErrResetTokenExpired)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrHashPasswordFailed)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", resetEntry.UserID).Update("password", hashedPassword).Error; err != nil {
			return err
		}
		return tx.Delete(&resetEntry).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": MsgPasswordReset})
}

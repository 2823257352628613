package auth

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"techlympics/config"
	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

func setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.CookieName, token, int(config.JWTExpiry.Seconds()), "/", "", config.IsProduction(), true)
}

// authenticate checks the credentials of a user found by query, applying login throttling
func authenticate(c *gin.Context, identifier, password string, lookup func(*models.User) error) (*models.User, bool) {
	ctx := c.Request.Context()

	if wait := throttler.Locked(ctx, identifier); wait > 0 {
		c.Header("Retry-After", fmt.Sprint(int(math.Ceil(wait.Seconds()))))
		response.Error(c, http.StatusTooManyRequests, ErrTooManyAttempts)
		return nil, false
	}

	var user models.User
	if err := lookup(&user); err != nil || !utils.CheckPasswordHash(password, user.Password) {
		throttler.Failure(ctx, identifier)
		response.Error(c, http.StatusUnauthorized, ErrInvalidCredentials)
		return nil, false
	}
	if !user.IsActive {
		response.Error(c, http.StatusForbidden, ErrAccountBlocked)
		return nil, false
	}

	throttler.Success(ctx, identifier)
	return &user, true
}

func completeLogin(c *gin.Context, user *models.User, status int) {
	token, err := utils.GenerateToken(*user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrTokenGenerateFailed)
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := database.DB.Model(user).Update("last_login", now).Error; err != nil {
		middleware.RequestLog(c).WithError(err).Warn("Failed to record last login")
	}

	setAuthCookie(c, token)
	c.JSON(status, AuthResponse{User: user, Token: token})
}

// Login authenticates an organizer
// @Summary Organizer login
// @Description Authenticate an organizer by username or email and set the auth cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400,401,403,429 {object} map[string]string
// @Router /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	identifier := strings.TrimSpace(req.Username)
	user, ok := authenticate(c, identifier, req.Password, func(u *models.User) error {
		return database.DB.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).First(u).Error
	})
	if !ok {
		return
	}
	if !user.IsOrganizer() {
		response.Error(c, http.StatusForbidden, ErrNotOrganizer)
		return
	}

	completeLogin(c, user, http.StatusOK)
}

// ParticipantLogin authenticates a contingent manager
// @Summary Participant login
// @Description Authenticate a participant by email and set the auth cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body ParticipantLoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400,401,403,429 {object} map[string]string
// @Router /auth/participants/login [post]
func ParticipantLogin(c *gin.Context) {
	var req ParticipantLoginRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, ok := authenticate(c, email, req.Password, func(u *models.User) error {
		return database.DB.Where("email = ?", email).First(u).Error
	})
	if !ok {
		return
	}
	if user.Role != models.RoleParticipant {
		response.Error(c, http.StatusForbidden, ErrNotParticipant)
		return
	}

	completeLogin(c, user, http.StatusOK)
}

// RegisterParticipant creates a participant account and logs it in
// @Summary Participant registration
// @Description Create a participant account
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Account"
// @Success 201 {object} AuthResponse
// @Failure 400,409,500 {object} map[string]string
// @Router /auth/participants/register [post]
func RegisterParticipant(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		response.Error(c, http.StatusConflict, ErrEmailInUse)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrHashPasswordFailed)
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashed,
		Role:     models.RoleParticipant,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrUserCreateFailed)
		return
	}

	completeLogin(c, &user, http.StatusCreated)
}

// CheckAuth returns the authenticated user
// @Summary Check authentication
// @Description Return the user of the current token
// @Tags Auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Router /auth/check [get]
// @Security Bearer
func CheckAuth(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the auth cookie
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.CookieName, "", -1, "/", "", config.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{"message": MsgLogoutSuccess})
}

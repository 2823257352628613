package middleware

import (
	"errors"
	"net/http"
	"strings"

	"techlympics/config"
	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUser     = "user"
)

var (
	ErrNoTokenProvided = errors.New("no token provided")
	ErrUnauthenticated = errors.New("authentication required")
)

// TokenFromRequest reads the JWT from the auth cookie or the Authorization header
func TokenFromRequest(c *gin.Context) (string, error) {
	if cookie, err := c.Cookie(config.CookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrNoTokenProvided
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", utils.ErrInvalidToken
	}
	return parts[1], nil
}

// AuthMiddleware requires a valid token belonging to an active user
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := TokenFromRequest(c)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err != nil {
			response.Abort(c, http.StatusUnauthorized, "User not found")
			return
		}
		if !user.IsActive {
			response.Abort(c, http.StatusForbidden, "Your account has been deactivated")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, &user)
		c.Next()
	}
}

// SetUserIdMiddleware loads the user when a valid token is present but never rejects the request
func SetUserIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := TokenFromRequest(c)
		if err != nil {
			c.Next()
			return
		}
		claims, err := utils.ParseToken(token)
		if err == nil {
			var user models.User
			if err := database.DB.First(&user, claims.UserID).Error; err == nil && user.IsActive {
				c.Set(ContextUserID, user.ID)
				c.Set(ContextUserRole, user.Role)
				c.Set(ContextUser, &user)
			}
		}
		c.Next()
	}
}

// RequireRoles lets the request through when the user holds one of the roles; ADMIN always passes
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUser)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user := value.(*models.User)
		if !user.HasRole(roles...) {
			response.Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetUserFromRequest returns the authenticated user, answering 401 itself when there is none
func GetUserFromRequest(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(ContextUser)
	if !exists {
		response.Abort(c, http.StatusUnauthorized, "Unauthorized")
		return nil, ErrUnauthenticated
	}
	return value.(*models.User), nil
}

// OptionalUser returns the user loaded by SetUserIdMiddleware, if any
func OptionalUser(c *gin.Context) *models.User {
	if value, exists := c.Get(ContextUser); exists {
		return value.(*models.User)
	}
	return nil
}

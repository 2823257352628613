package users

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to users
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile", middleware.AuthMiddleware())
	{
		profile.GET("", GetUserProfile)
		profile.PUT("", UpdateUserProfile)
		profile.PUT("/password", UpdateUserPassword)
	}

	users := r.Group("/organizer/users", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin))
	{
		users.GET("", GetUsers)
		users.POST("", CreateUser)
		users.POST("/import", ImportUsersFromXLSX)
		users.DELETE("", BulkDeleteUsers)
		users.GET("/roles", GetRoles)
		users.GET("/:id", GetUser)
		users.PUT("/:id", UpdateUser)
		users.PUT("/:id/role", UpdateUserRole)
		users.PUT("/:id/block", ToggleBlockUser)
		users.PUT("/:id/resetpass", ResetUserPassword)
		users.DELETE("/:id", DeleteUser)
	}
}

package auth

import (
	"techlympics/config"
	"techlympics/database"
	"techlympics/middleware"
	"techlympics/services"

	"github.com/gin-gonic/gin"
)

var throttler *services.LoginThrottler

// RegisterRoutes registers all routes related to authentication
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	throttler = services.NewLoginThrottler(database.RDB, config.DefaultLoginThrottleConfig)

	auth := r.Group("/auth")
	{
		auth.POST("/login", Login)
		auth.POST("/participants/login", ParticipantLogin)
		auth.POST("/participants/register", RegisterParticipant)
		auth.GET("/check", middleware.AuthMiddleware(), CheckAuth)
		auth.POST("/logout", Logout)
		auth.POST("/request-reset", RequestPasswordReset)
		auth.POST("/reset-password", ResetPassword)
	}
}

package dashboard

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the dashboard routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/participants/dashboard", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleParticipant), GetParticipantDashboard)

	organizer := r.Group("/organizer/dashboard", middleware.AuthMiddleware())
	{
		organizer.GET("", middleware.RequireRoles(models.RoleOperator, models.RoleViewer), GetOrganizerDashboard)
		organizer.POST("/refresh", middleware.RequireRoles(models.RoleOperator), RefreshOrganizerDashboard)
	}
}

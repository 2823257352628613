package announcements

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the announcement routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/announcements", GetPublishedAnnouncements)

	organizer := r.Group("/organizer/announcements", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleOperator))
	{
		organizer.GET("", GetAnnouncements)
		organizer.POST("", CreateAnnouncement)
		organizer.PUT("/:id", UpdateAnnouncement)
		organizer.DELETE("/:id", DeleteAnnouncement)
	}
}

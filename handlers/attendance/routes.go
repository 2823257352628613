package attendance

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the attendance routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/attendance")
	{
		public.POST("/endpoints/:hash/verify", VerifyEndpoint)
		public.POST("/check-in", CheckIn)
	}

	r.GET("/participants/events/:id/attendance", middleware.AuthMiddleware(),
		middleware.RequireRoles(models.RoleParticipant), GetManagerCodes)

	organizer := r.Group("/organizer/events/:id", middleware.AuthMiddleware(),
		middleware.RequireRoles(models.RoleOperator, models.RoleViewer, models.RoleParticipantsManager))
	writer := middleware.RequireRoles(models.RoleOperator, models.RoleParticipantsManager)
	{
		organizer.POST("/attendance/sync", writer, SyncAttendance)
		organizer.GET("/attendance/stats", GetStatistics)
		organizer.GET("/attendance/contestants", GetContestantAttendance)
		organizer.PUT("/attendance/mark", writer, MarkAttendance)
		organizer.GET("/attendance.xlsx", DownloadAttendance)
		organizer.GET("/attendance/endpoints", GetEndpoints)
		organizer.POST("/attendance/endpoints", writer, CreateEndpoint)
		organizer.DELETE("/attendance/endpoints/:endpointId", writer, DeleteEndpoint)
	}
}

package contingents

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the contingent routes of participants and organizers
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	participants := r.Group("/participants/contingents", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleParticipant))
	{
		participants.GET("", GetMyContingents)
		participants.POST("", CreateContingent)
		participants.PUT("/:id", UpdateContingent)
		participants.POST("/:id/requests", RequestAccess)
		participants.GET("/:id/requests", GetContingentRequests)
		participants.PUT("/:id/requests/:requestId", ReviewRequestHandler)
		participants.GET("/:id/managers", GetManagers)
		participants.DELETE("/:id/managers/:userId", RemoveManager)
	}

	// Contingents a participant may ask to join
	r.GET("/contingents/search", middleware.AuthMiddleware(), SearchContingents)

	organizer := r.Group("/organizer/contingents", middleware.AuthMiddleware(),
		middleware.RequireRoles(models.RoleOperator, models.RoleViewer, models.RoleParticipantsManager))
	{
		organizer.GET("", GetContingents)
		organizer.GET("/report.xlsx", DownloadContingentReport)
		organizer.GET("/:id", GetContingent)
		organizer.PUT("/:id", middleware.RequireRoles(models.RoleOperator, models.RoleParticipantsManager), UpdateContingent)
		organizer.DELETE("/:id", middleware.RequireRoles(models.RoleOperator), DeleteContingent)
		organizer.PUT("/:id/requests/:requestId", middleware.RequireRoles(models.RoleOperator, models.RoleParticipantsManager), ReviewRequestHandler)
	}
}

package contestants

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the contestant routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	participants := r.Group("/participants", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleParticipant))
	{
		participants.GET("/contingents/:id/contestants", GetContingentContestants)
		participants.POST("/contingents/:id/contestants", CreateContestant)
		participants.POST("/contingents/:id/contestants/import", ImportContestants)
		participants.PUT("/contestants/:id", UpdateContestant)
		participants.DELETE("/contestants/:id", DeleteContestant)
	}

	organizer := r.Group("/organizer/contestants", middleware.AuthMiddleware(),
		middleware.RequireRoles(models.RoleOperator, models.RoleViewer, models.RoleParticipantsManager))
	{
		organizer.GET("", GetContestants)
		organizer.GET("/:id", GetContestant)
	}
}

package teams

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the team routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	participants := r.Group("/participants", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleParticipant))
	{
		participants.GET("/contingents/:id/teams", GetContingentTeams)
		participants.POST("/contingents/:id/teams", CreateTeam)
		participants.GET("/teams/:id", GetTeam)
		participants.PUT("/teams/:id", UpdateTeam)
		participants.DELETE("/teams/:id", DeleteTeam)
		participants.POST("/teams/:id/members", AddMember)
		participants.DELETE("/teams/:id/members/:contestantId", RemoveMember)
		participants.GET("/teams/:id/registrations", GetTeamRegistrations)
		participants.POST("/teams/:id/registrations", RegisterTeam)
	}

	organizer := r.Group("/organizer/teams", middleware.AuthMiddleware(),
		middleware.RequireRoles(models.RoleOperator, models.RoleViewer, models.RoleParticipantsManager))
	{
		organizer.GET("", GetTeams)
		organizer.GET("/:id", GetOrganizerTeam)
	}
}

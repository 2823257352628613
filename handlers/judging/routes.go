package judging

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the judging routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/judging/event-contests/:id/ws", ScoreboardWebSocket)

	judge := r.Group("/judge/:hashcode")
	{
		judge.GET("", GetJudgeView)
		judge.POST("/sessions", StartSession)
		judge.GET("/sessions/:sessionId", GetJudgeSession)
		judge.PUT("/scores", UpdateScores)
		judge.POST("/sessions/:sessionId/complete", CompleteSession)
	}

	readers := middleware.RequireRoles(models.RoleOperator, models.RoleViewer, models.RoleJudge)
	writers := middleware.RequireRoles(models.RoleOperator)

	organizer := r.Group("/organizer", middleware.AuthMiddleware())
	{
		organizer.GET("/judging-templates", readers, GetTemplates)
		organizer.GET("/judging-templates/:id", readers, GetTemplate)
		organizer.POST("/judging-templates", writers, CreateTemplate)
		organizer.PUT("/judging-templates/:id", writers, UpdateTemplate)
		organizer.DELETE("/judging-templates/:id", writers, DeleteTemplate)
		organizer.POST("/judging-templates/:id/criteria", writers, CreateCriterion)
		organizer.PUT("/judging-templates/:id/criteria/:criterionId", writers, UpdateCriterion)
		organizer.DELETE("/judging-templates/:id/criteria/:criterionId", writers, DeleteCriterion)

		organizer.GET("/events/:id/judge-endpoints", readers, GetJudgeEndpoints)
		organizer.POST("/events/:id/judge-endpoints", writers, CreateJudgeEndpoint)
		organizer.DELETE("/judge-endpoints/:id", writers, DeleteJudgeEndpoint)

		organizer.GET("/events/:id/scoreboard", readers, GetScoreboard)
		organizer.GET("/events/:id/scoreboard.xlsx", readers, DownloadScoreboard)
		organizer.GET("/event-contests/:id/judging-sessions", readers, GetEventContestSessions)
		organizer.GET("/judging-sessions/:id", readers, GetSession)
	}
}

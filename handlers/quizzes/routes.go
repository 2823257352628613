package quizzes

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the quiz routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	arena := r.Group("/arena/contestants/:hashcode/quizzes")
	{
		arena.GET("", GetArenaQuizzes)
		arena.POST("/:quizId/start", StartQuiz)
		arena.POST("/:quizId/submit", SubmitQuiz)
	}

	readers := middleware.RequireRoles(models.RoleOperator, models.RoleViewer)
	writers := middleware.RequireRoles(models.RoleOperator)

	organizer := r.Group("/organizer", middleware.AuthMiddleware())
	{
		organizer.GET("/questions", readers, GetQuestions)
		organizer.GET("/questions/:id", readers, GetQuestion)
		organizer.POST("/questions", writers, CreateQuestion)
		organizer.PUT("/questions/:id", writers, UpdateQuestion)
		organizer.DELETE("/questions/:id", writers, DeleteQuestion)

		organizer.GET("/quizzes", readers, GetQuizzes)
		organizer.GET("/quizzes/:id", readers, GetQuiz)
		organizer.GET("/quizzes/:id/results", readers, GetQuizResults)
		organizer.GET("/quizzes/:id/results.xlsx", readers, DownloadQuizResults)
		organizer.POST("/quizzes", writers, CreateQuiz)
		organizer.PUT("/quizzes/:id", writers, UpdateQuiz)
		organizer.DELETE("/quizzes/:id", writers, DeleteQuiz)
		organizer.PUT("/quizzes/:id/questions", writers, AssignQuestions)
		organizer.POST("/quizzes/:id/publish", writers, PublishQuiz)
		organizer.POST("/quizzes/:id/retract", writers, RetractQuiz)
		organizer.POST("/quizzes/:id/republish", writers, RepublishQuiz)
		organizer.POST("/quizzes/:id/end", writers, EndQuiz)
	}
}

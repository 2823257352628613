package contests

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the contest routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/contests")
	{
		public.GET("", GetContests)
		public.GET("/:id", GetContest)
	}

	organizer := r.Group("/organizer/contests", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleOperator))
	{
		organizer.POST("", CreateContest)
		organizer.PUT("/:id", UpdateContest)
		organizer.DELETE("/:id", DeleteContest)
	}
}

package reference

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the reference data routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/reference")
	{
		public.GET("/zones", GetZones)
		public.GET("/states", GetStates)
		public.GET("/schools", GetSchools)
		public.GET("/institutions", GetInstitutions)
		public.GET("/target-groups", GetTargetGroups)
	}

	organizer := r.Group("/organizer/reference", middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleOperator))
	{
		organizer.POST("/schools/import", ImportSchools)
		organizer.POST("/target-groups", CreateTargetGroup)
		organizer.PUT("/target-groups/:id", UpdateTargetGroup)
		organizer.DELETE("/target-groups/:id", DeleteTargetGroup)
	}
}

package events

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the event routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/events")
	{
		public.GET("", GetActiveEvents)
		public.GET("/:id", GetEvent)
	}

	readers := []string{models.RoleOperator, models.RoleViewer, models.RoleParticipantsManager}
	organizer := r.Group("/organizer", middleware.AuthMiddleware(), middleware.RequireRoles(readers...))
	writer := middleware.RequireRoles(models.RoleOperator)
	{
		organizer.GET("/events", GetEvents)
		organizer.POST("/events", writer, CreateEvent)
		organizer.PUT("/events/:id", writer, UpdateEvent)
		organizer.PUT("/events/:id/status", writer, SetEventStatus)
		organizer.DELETE("/events/:id", writer, DeleteEvent)

		organizer.POST("/events/:id/contests", writer, AddEventContest)
		organizer.PUT("/event-contests/:id", writer, UpdateEventContest)
		organizer.DELETE("/event-contests/:id", writer, DeleteEventContest)

		organizer.GET("/events/:id/registrations", GetRegistrations)
		organizer.GET("/events/:id/registrations.xlsx", DownloadRawList)
		organizer.PUT("/registrations/:id", middleware.RequireRoles(models.RoleOperator, models.RoleParticipantsManager), SetRegistrationStatus)
	}
}

package email

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the email routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/email/track/:file", TrackOpen)

	readers := middleware.RequireRoles(models.RoleOperator, models.RoleViewer)
	writers := middleware.RequireRoles(models.RoleOperator)

	organizer := r.Group("/organizer", middleware.AuthMiddleware())
	{
		organizer.GET("/email-templates", readers, GetTemplates)
		organizer.GET("/email-templates/:id", readers, GetTemplate)
		organizer.POST("/email-templates", writers, CreateTemplate)
		organizer.PUT("/email-templates/:id", writers, UpdateTemplate)
		organizer.DELETE("/email-templates/:id", writers, DeleteTemplate)
		organizer.POST("/email-templates/:id/test", writers, SendTestEmail)

		organizer.GET("/email-campaigns", readers, GetCampaigns)
		organizer.GET("/email-campaigns/:id", readers, GetCampaign)
		organizer.POST("/email-campaigns", writers, CreateCampaign)
		organizer.PUT("/email-campaigns/:id", writers, UpdateCampaign)
		organizer.DELETE("/email-campaigns/:id", writers, DeleteCampaign)
		organizer.GET("/email-campaigns/:id/recipients", readers, GetRecipients)
		organizer.POST("/email-campaigns/:id/recipients", writers, AddRecipients)
		organizer.POST("/email-campaigns/:id/recipients/import", writers, ImportRecipients)
		organizer.DELETE("/email-campaigns/:id/recipients/:recipientId", writers, DeleteRecipient)
		organizer.POST("/email-campaigns/:id/send", writers, SendCampaignBatch)
		organizer.POST("/email-campaigns/:id/retry-failed", writers, RetryFailedRecipients)

		organizer.GET("/email-outgoing", readers, GetOutgoing)
	}
}

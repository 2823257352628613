package certificates

import (
	"techlympics/middleware"
	"techlympics/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the certificate template, issuing and verification routes
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/certificates/verify", VerifyCertificate)

	readers := middleware.RequireRoles(models.RoleOperator, models.RoleViewer)
	writers := middleware.RequireRoles(models.RoleOperator)

	templates := r.Group("/organizer/certificate-templates", middleware.AuthMiddleware())
	{
		templates.GET("", readers, GetTemplates)
		templates.GET("/:id", readers, GetTemplate)
		templates.POST("", writers, CreateTemplate)
		templates.PUT("/:id", writers, UpdateTemplate)
		templates.DELETE("/:id", writers, DeleteTemplate)
		templates.POST("/:id/duplicate", writers, DuplicateTemplate)
		templates.POST("/:id/generate-event", writers, GenerateForEventParticipants)
		templates.POST("/:id/generate-winners", writers, GenerateForEventWinners)
		templates.GET("/:id/serials", readers, GetTemplateSerials)
		templates.GET("/:id/serials/preview", readers, PreviewSerialNumber)
		templates.POST("/:id/serials/reset", writers, ResetSerialSequence)
	}

	r.GET("/organizer/certificate-serials/stats", middleware.AuthMiddleware(), readers, GetSerialStats)

	certificates := r.Group("/organizer/certificates", middleware.AuthMiddleware())
	{
		certificates.GET("", readers, GetCertificates)
		certificates.GET("/:id", readers, GetCertificate)
		certificates.GET("/:id/download", readers, DownloadCertificate)
		certificates.POST("/generate", writers, GenerateCertificates)
		certificates.POST("/download", readers, DownloadCertificates)
		certificates.DELETE("/:id", writers, DeleteCertificate)
	}
}

package v1

import (
	"techlympics/handlers/announcements"
	"techlympics/handlers/attendance"
	"techlympics/handlers/auth"
	"techlympics/handlers/certificates"
	"techlympics/handlers/contestants"
	"techlympics/handlers/contests"
	"techlympics/handlers/contingents"
	"techlympics/handlers/dashboard"
	"techlympics/handlers/email"
	"techlympics/handlers/events"
	"techlympics/handlers/judging"
	"techlympics/handlers/quizzes"
	"techlympics/handlers/reference"
	"techlympics/handlers/teams"
	"techlympics/handlers/users"
	"techlympics/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Register the endpoints for the v1 API
func Register(r *gin.Engine) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(10000, 1500)
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	RegisterHealthRoutes(v1)
	auth.RegisterRoutes(v1)
	users.RegisterRoutes(v1)
	reference.RegisterRoutes(v1)
	contingents.RegisterRoutes(v1)
	contestants.RegisterRoutes(v1)
	teams.RegisterRoutes(v1)
	contests.RegisterRoutes(v1)
	events.RegisterRoutes(v1)
	attendance.RegisterRoutes(v1)
	announcements.RegisterRoutes(v1)
	certificates.RegisterRoutes(v1)
	judging.RegisterRoutes(v1)
	quizzes.RegisterRoutes(v1)
	email.RegisterRoutes(v1)
	dashboard.RegisterRoutes(v1)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}

package v1

import (
	"context"
	"net/http"
	"time"

	"techlympics/database"
	"techlympics/logger"

	"github.com/gin-gonic/gin"
)

// @Summary Ping
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// @Summary Health check
// @Description Reports whether the database and, when configured, Redis answer
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "up"}
	code := http.StatusOK

	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.Log.WithError(err).Warn("Database health check failed")
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}

	if database.RDB != nil {
		status["redis"] = "up"
		if err := database.RDB.Ping(ctx).Err(); err != nil {
			logger.Log.WithError(err).Warn("Redis health check failed")
			status["redis"] = "down"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}

// RegisterHealthRoutes registers the liveness and readiness routes
func RegisterHealthRoutes(r *gin.RouterGroup) {
	r.GET("/ping", ping)
	r.GET("/health", health)
}

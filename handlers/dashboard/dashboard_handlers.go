package dashboard

import (
	"net/http"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/middleware"
	"techlympics/services"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// GetOrganizerDashboard returns the registration counters, served from Redis for five minutes when available
// @Summary Organizer dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Failure 500 {object} map[string]string
// @Router /organizer/dashboard [get]
// @Security Bearer
func GetOrganizerDashboard(c *gin.Context) {
	stats, err := services.NewDashboardService(database.DB, database.RDB).Stats(c.Request.Context())
	if err != nil {
		logger.Log.WithError(err).Error("Failed to compute dashboard")
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetStats)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RefreshOrganizerDashboard drops the cached counters
// @Summary Refresh the organizer dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} map[string]string
// @Router /organizer/dashboard/refresh [post]
// @Security Bearer
func RefreshOrganizerDashboard(c *gin.Context) {
	services.NewDashboardService(database.DB, database.RDB).Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": MsgCacheCleared})
}

// GetParticipantDashboard counts what the participant's contingents have registered
// @Summary Participant dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.ParticipantStats
// @Failure 500 {object} map[string]string
// @Router /participants/dashboard [get]
// @Security Bearer
func GetParticipantDashboard(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	stats, err := services.GetParticipantStats(database.DB, user.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetStats)
		return
	}
	c.JSON(http.StatusOK, stats)
}

package attendance

import (
	"errors"
	"net/http"
	"time"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// VerifyEndpoint unlocks a QR scanner station with its passcode
// @Summary Verify an attendance endpoint
// @Tags Attendance
// @Accept json
// @Produce json
// @Param hash path string true "Endpoint hash"
// @Param passcode body VerifyEndpointRequest true "Passcode"
// @Success 200 {object} models.Event
// @Failure 401,404 {object} map[string]string
// @Router /attendance/endpoints/{hash}/verify [post]
func VerifyEndpoint(c *gin.Context) {
	var req VerifyEndpointRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	var endpoint models.AttendanceEndpoint
	if err := database.DB.Preload("Event").Where("endpoint_hash = ?", c.Param("hash")).First(&endpoint).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEndpointNotFound)
		return
	}
	if endpoint.Passcode != req.Passcode {
		response.Error(c, http.StatusUnauthorized, ErrInvalidPasscode)
		return
	}
	c.JSON(http.StatusOK, endpoint.Event)
}

// CheckIn marks a whole contingent present from its manager's QR code
// @Summary QR check-in
// @Description Only manager codes are accepted; the contingent's managers, contestants and teams become present
// @Tags Attendance
// @Accept json
// @Produce json
// @Param checkin body CheckInRequest true "Check-in"
// @Success 200 {object} services.CheckInResult
// @Failure 400,404 {object} map[string]string
// @Router /attendance/check-in [post]
func CheckIn(c *gin.Context) {
	var req CheckInRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	result, err := services.CheckIn(database.DB, req.EventID, req.EndpointHash, req.Hashcode, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEndpointNotFound), errors.Is(err, services.ErrAttendanceCodeUnknown):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrAttendanceNotOpen), errors.Is(err, services.ErrContestantCode),
			errors.Is(err, services.ErrAlreadyCheckedIn):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			logger.Log.WithError(err).WithField("event_id", req.EventID).Error("Check-in failed")
			response.Error(c, http.StatusInternalServerError, "Check-in failed")
		}
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"event_id":      req.EventID,
		"contingent_id": result.ContingentID,
		"updated":       result.TotalUpdated,
	}).Info("Contingent checked in")
	services.NewDashboardService(database.DB, database.RDB).Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// GetManagerCodes returns the check-in codes of the participant's contingents for an event
// @Summary My attendance codes
// @Tags Attendance
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {array} models.AttendanceManager
// @Router /participants/events/{id}/attendance [get]
// @Security Bearer
func GetManagerCodes(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	eventID, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	rows := []models.AttendanceManager{}
	if err := database.DB.Preload("Contingent").Where("event_id = ? AND manager_id = ?", eventID, user.ID).
		Find(&rows).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, rows)
}

package events

import (
	"errors"
	"net/http"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddEventContest adds a contest to an event
// @Summary Add a contest to an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param contest body EventContestRequest true "Event contest"
// @Success 201 {object} models.EventContest
// @Failure 400,404,409,500 {object} map[string]string
// @Router /organizer/events/{id}/contests [post]
// @Security Bearer
func AddEventContest(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return
	}
	var req EventContestRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	var contest models.Contest
	if err := database.DB.First(&contest, req.ContestID).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestNotFound)
		return
	}

	var count int64
	database.DB.Model(&models.EventContest{}).Where("event_id = ? AND contest_id = ?", id, req.ContestID).Count(&count)
	if count > 0 {
		response.Error(c, http.StatusConflict, ErrEventContestExists)
		return
	}

	eventContest := models.EventContest{
		EventID:             id,
		ContestID:           contest.ID,
		MaxParticipants:     req.MaxParticipants,
		PersonInCharge:      req.PersonInCharge,
		PersonInChargePhone: req.PersonInChargePhone,
		JudgingTemplateID:   req.JudgingTemplateID,
		IsActive:            true,
	}
	if err := database.DB.Create(&eventContest).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	if req.IsActive != nil && !*req.IsActive {
		database.DB.Model(&eventContest).Update("is_active", false)
	}
	c.JSON(http.StatusCreated, eventContest)
}

// UpdateEventContest updates the limits, contact and judging template of an event contest
// @Summary Update an event contest
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event contest ID"
// @Param contest body EventContestRequest true "Event contest"
// @Success 200 {object} models.EventContest
// @Failure 400,404,500 {object} map[string]string
// @Router /organizer/event-contests/{id} [put]
// @Security Bearer
func UpdateEventContest(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var eventContest models.EventContest
	if err := database.DB.First(&eventContest, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventContestNotFound)
		return
	}
	var req EventContestRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{
		"max_participants":       req.MaxParticipants,
		"person_in_charge":       req.PersonInCharge,
		"person_in_charge_phone": req.PersonInChargePhone,
		"judging_template_id":    req.JudgingTemplateID,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := database.DB.Model(&eventContest).Updates(updates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	database.DB.Preload("Contest").First(&eventContest, id)
	c.JSON(http.StatusOK, eventContest)
}

// DeleteEventContest removes a contest from an event when no team registered
// @Summary Remove a contest from an event
// @Tags Events
// @Param id path int true "Event contest ID"
// @Success 204
// @Failure 404,409,500 {object} map[string]string
// @Router /organizer/event-contests/{id} [delete]
// @Security Bearer
func DeleteEventContest(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var eventContest models.EventContest
	if err := database.DB.First(&eventContest, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventContestNotFound)
		return
	}
	var count int64
	database.DB.Model(&models.EventContestTeam{}).Where("event_contest_id = ?", id).Count(&count)
	if count > 0 {
		response.Error(c, http.StatusConflict, ErrEventContestInUse)
		return
	}
	if err := database.DB.Delete(&eventContest).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRegistrations lists the team registrations of an event
// @Summary List event registrations
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Param status query string false "Registration status"
// @Param contestId query int false "Contest"
// @Success 200 {array} models.EventContestTeam
// @Router /organizer/events/{id}/registrations [get]
// @Security Bearer
func GetRegistrations(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	query := database.DB.Model(&models.EventContestTeam{}).
		Joins("JOIN event_contests ON event_contests.id = event_contest_teams.event_contest_id").
		Where("event_contests.event_id = ?", id)
	if status := c.Query("status"); status != "" {
		query = query.Where("event_contest_teams.status = ?", status)
	}
	if contestID := utils.QueryUint(c, "contestId"); contestID != nil {
		query = query.Where("event_contests.contest_id = ?", *contestID)
	}

	registrations := []models.EventContestTeam{}
	if err := query.Preload("EventContest.Contest").Preload("Team.Contingent").Preload("Team.Members.Contestant").
		Order("event_contest_teams.created_at").Find(&registrations).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetEvents)
		return
	}
	c.JSON(http.StatusOK, registrations)
}

// SetRegistrationStatus approves or rejects a team registration
// @Summary Change a registration status
// @Tags Events
// @Accept json
// @Param id path int true "Registration ID"
// @Param status body RegistrationStatusRequest true "Status"
// @Success 204
// @Failure 400,404 {object} map[string]string
// @Router /organizer/registrations/{id} [put]
// @Security Bearer
func SetRegistrationStatus(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req RegistrationStatusRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if err := services.SetRegistrationStatus(database.DB, id, req.Status); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, ErrRegistrationNotFound)
		case errors.Is(err, services.ErrInvalidRegistrationStatus):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	services.NewDashboardService(database.DB, database.RDB).Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

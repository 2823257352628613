package teams

import (
	"net/http"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// AddMember adds a contestant of the team's contingent to the team
// @Summary Add a team member
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param member body MemberRequest true "Member"
// @Success 201 {object} models.TeamMember
// @Failure 400,403,404,409 {object} map[string]string
// @Router /participants/teams/{id}/members [post]
// @Security Bearer
func AddMember(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}
	var req MemberRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	member, err := services.AddTeamMember(database.DB, team.ID, req.ContestantID, req.Role)
	if err != nil {
		teamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// RemoveMember removes a contestant from the team
// @Summary Remove a team member
// @Tags Teams
// @Param id path int true "Team ID"
// @Param contestantId path int true "Contestant ID"
// @Success 204
// @Failure 403,404 {object} map[string]string
// @Router /participants/teams/{id}/members/{contestantId} [delete]
// @Security Bearer
func RemoveMember(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}
	contestantID, ok := utils.ParseUintParam(c, "contestantId")
	if !ok {
		return
	}
	if err := services.RemoveTeamMember(database.DB, team.ID, contestantID); err != nil {
		teamError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTeamRegistrations lists the event contests the team is registered for
// @Summary List team registrations
// @Tags Teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {array} models.EventContestTeam
// @Failure 403,404 {object} map[string]string
// @Router /participants/teams/{id}/registrations [get]
// @Security Bearer
func GetTeamRegistrations(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}
	registrations := []models.EventContestTeam{}
	if err := database.DB.Preload("EventContest.Event").Preload("EventContest.Contest").
		Where("team_id = ?", team.ID).Order("created_at").Find(&registrations).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetTeams)
		return
	}
	c.JSON(http.StatusOK, registrations)
}

// RegisterTeam enters the team into an event contest
// @Summary Register a team for an event contest
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param registration body RegistrationRequest true "Event contest"
// @Success 201 {object} models.EventContestTeam
// @Failure 400,403,404,409 {object} map[string]string
// @Router /participants/teams/{id}/registrations [post]
// @Security Bearer
func RegisterTeam(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}
	var req RegistrationRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var members int64
	database.DB.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members)
	if members < models.MinTeamMembers {
		response.Error(c, http.StatusBadRequest, "Team has no members")
		return
	}

	registration, err := services.RegisterTeam(database.DB, req.EventContestID, team.ID)
	if err != nil {
		teamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registration)
}

package teams

import (
	"errors"
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// managedTeam loads the team of the path and checks the user may manage its contingent
func managedTeam(c *gin.Context) (*models.Team, bool) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return nil, false
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var team models.Team
	if err := database.DB.First(&team, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrTeamNotFound)
		return nil, false
	}
	if !services.CanManageContingent(database.DB, user, team.ContingentID) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return nil, false
	}
	return &team, true
}

// teamError maps the team service errors to a status
func teamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, ErrNotFound)
	case errors.Is(err, services.ErrAlreadyTeamMember), errors.Is(err, services.ErrAlreadyRegistered):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidTeamSize), errors.Is(err, services.ErrTeamFull),
		errors.Is(err, services.ErrMemberContingentMismatch), errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrEventContestFull), errors.Is(err, services.ErrTeamContestMismatch):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

// GetContingentTeams lists the teams of a managed contingent
// @Summary List teams of a contingent
// @Tags Teams
// @Produce json
// @Param id path int true "Contingent ID"
// @Success 200 {array} models.Team
// @Failure 403,404 {object} map[string]string
// @Router /participants/contingents/{id}/teams [get]
// @Security Bearer
func GetContingentTeams(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	contingentID, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if !services.CanManageContingent(database.DB, user, contingentID) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	teams := []models.Team{}
	if err := database.DB.Preload("Contest").Preload("Members.Contestant").
		Where("contingent_id = ?", contingentID).Order("name").Find(&teams).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetTeams)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// CreateTeam creates a team in a managed contingent
// @Summary Create a team
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Contingent ID"
// @Param team body TeamRequest true "Team"
// @Success 201 {object} models.Team
// @Failure 400,403,404 {object} map[string]string
// @Router /participants/contingents/{id}/teams [post]
// @Security Bearer
func CreateTeam(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	contingentID, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contingent models.Contingent
	if err := database.DB.First(&contingent, contingentID).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContingentNotFound)
		return
	}
	if !services.CanManageContingent(database.DB, user, contingentID) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	var req TeamRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	var contest models.Contest
	if err := database.DB.First(&contest, req.ContestID).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestNotFound)
		return
	}

	team := models.Team{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		ContestID:    contest.ID,
		ContingentID: contingentID,
		MaxMembers:   req.MaxMembers,
	}
	if err := services.CreateTeam(database.DB, &team); err != nil {
		teamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// GetTeam returns a team with its members
// @Summary Get a team
// @Tags Teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} models.Team
// @Failure 403,404 {object} map[string]string
// @Router /participants/teams/{id} [get]
// @Security Bearer
func GetTeam(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}
	if err := database.DB.Preload("Contest").Preload("Contingent").Preload("Members.Contestant").
		First(team, team.ID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetTeams)
		return
	}
	c.JSON(http.StatusOK, team)
}

// UpdateTeam renames a team or changes its size
// @Summary Update a team
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param team body UpdateTeamRequest true "Team"
// @Success 200 {object} models.Team
// @Failure 400,403,404 {object} map[string]string
// @Router /participants/teams/{id} [put]
// @Security Bearer
func UpdateTeam(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}
	var req UpdateTeamRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
	}
	if req.MaxMembers > 0 {
		var members int64
		database.DB.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members)
		if int64(req.MaxMembers) < members {
			response.Error(c, http.StatusBadRequest, services.ErrTeamFull.Error())
			return
		}
		updates["max_members"] = req.MaxMembers
	}
	if err := database.DB.Model(team).Updates(updates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdate)
		return
	}
	c.JSON(http.StatusOK, team)
}

// DeleteTeam removes an unregistered team and its memberships
// @Summary Delete a team
// @Tags Teams
// @Param id path int true "Team ID"
// @Success 204
// @Failure 403,404,409 {object} map[string]string
// @Router /participants/teams/{id} [delete]
// @Security Bearer
func DeleteTeam(c *gin.Context) {
	team, ok := managedTeam(c)
	if !ok {
		return
	}

	var registrations int64
	database.DB.Model(&models.EventContestTeam{}).Where("team_id = ?", team.ID).Count(&registrations)
	if registrations > 0 {
		response.Error(c, http.StatusConflict, ErrTeamRegistered)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(team).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTeams lists teams for organizers
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param contestId query int false "Contest"
// @Param contingentId query int false "Contingent"
// @Param search query string false "Name filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/teams [get]
// @Security Bearer
func GetTeams(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.Team{})
	if contestID := utils.QueryUint(c, "contestId"); contestID != nil {
		query = query.Where("contest_id = ?", *contestID)
	}
	if contingentID := utils.QueryUint(c, "contingentId"); contingentID != nil {
		query = query.Where("contingent_id = ?", *contingentID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetTeams)
		return
	}
	teams := []models.Team{}
	if err := query.Scopes(pagination.Scope).Preload("Contest").Preload("Contingent").
		Order("name").Find(&teams).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetTeams)
		return
	}
	response.Paginated(c, teams, pagination.WithTotal(total))
}

// GetOrganizerTeam returns any team with its members and registrations
// @Summary Get a team
// @Tags Teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} models.Team
// @Failure 404 {object} map[string]string
// @Router /organizer/teams/{id} [get]
// @Security Bearer
func GetOrganizerTeam(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var team models.Team
	if err := database.DB.Preload("Contest").Preload("Contingent").Preload("Members.Contestant").
		First(&team, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrTeamNotFound)
		return
	}
	c.JSON(http.StatusOK, team)
}

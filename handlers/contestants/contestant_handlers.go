package contestants

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
)

// contingentForManager loads the contingent of the path and checks the user may manage it
func contingentForManager(c *gin.Context) (*models.User, uint, bool) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return nil, 0, false
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, 0, false
	}
	var count int64
	database.DB.Model(&models.Contingent{}).Where("id = ?", id).Count(&count)
	if count == 0 {
		response.Error(c, http.StatusNotFound, ErrContingentNotFound)
		return nil, 0, false
	}
	if !services.CanManageContingent(database.DB, user, id) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return nil, 0, false
	}
	return user, id, true
}

// contestantError maps the contestant service errors to a status
func contestantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateIC):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidIC), errors.Is(err, services.ErrInvalidEduLevel):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

// GetContingentContestants lists the contestants of a managed contingent
// @Summary List contestants of a contingent
// @Tags Contestants
// @Produce json
// @Param id path int true "Contingent ID"
// @Param eduLevel query string false "Education level"
// @Success 200 {array} models.Contestant
// @Failure 403,404 {object} map[string]string
// @Router /participants/contingents/{id}/contestants [get]
// @Security Bearer
func GetContingentContestants(c *gin.Context) {
	_, contingentID, ok := contingentForManager(c)
	if !ok {
		return
	}

	query := database.DB.Where("contingent_id = ?", contingentID)
	if level := strings.ToLower(c.Query("eduLevel")); level != "" {
		query = query.Where("edu_level = ?", level)
	}
	contestants := []models.Contestant{}
	if err := query.Order("name").Find(&contestants).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContestants)
		return
	}
	c.JSON(http.StatusOK, contestants)
}

// CreateContestant registers a contestant in a managed contingent
// @Summary Create a contestant
// @Tags Contestants
// @Accept json
// @Produce json
// @Param id path int true "Contingent ID"
// @Param contestant body services.ContestantInput true "Contestant"
// @Success 201 {object} models.Contestant
// @Failure 400,403,409 {object} map[string]string
// @Router /participants/contingents/{id}/contestants [post]
// @Security Bearer
func CreateContestant(c *gin.Context) {
	user, contingentID, ok := contingentForManager(c)
	if !ok {
		return
	}

	var input services.ContestantInput
	if !utils.BindJSON(c, &input) {
		return
	}

	contestant, err := services.CreateContestant(database.DB, contingentID, input, &user.ID)
	if err != nil {
		contestantError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contestant)
}

// ImportContestants bulk-creates contestants from an XLSX upload
// @Summary Import contestants
// @Description Reads every sheet of the workbook; rows that fail validation are reported and skipped
// @Tags Contestants
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Contingent ID"
// @Param file formData file true "XLSX file"
// @Success 200 {object} services.ImportResult
// @Failure 400,403 {object} map[string]string
// @Router /participants/contingents/{id}/contestants/import [post]
// @Security Bearer
func ImportContestants(c *gin.Context) {
	user, contingentID, ok := contingentForManager(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, ErrMissingFile+": "+err.Error())
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to open file: "+err.Error())
		return
	}
	defer opened.Close()

	rows, err := services.ParseContestantWorkbook(opened)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to parse XLSX file: "+err.Error())
		return
	}

	result := services.ImportContestants(database.DB, contingentID, rows, &user.ID)
	c.JSON(http.StatusOK, result)
}

// UpdateContestant edits a contestant of a managed contingent
// @Summary Update a contestant
// @Tags Contestants
// @Accept json
// @Produce json
// @Param id path int true "Contestant ID"
// @Param contestant body services.ContestantInput true "Contestant"
// @Success 200 {object} models.Contestant
// @Failure 400,403,404,409 {object} map[string]string
// @Router /participants/contestants/{id} [put]
// @Security Bearer
func UpdateContestant(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var contestant models.Contestant
	if err := database.DB.First(&contestant, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestantNotFound)
		return
	}
	if !services.CanManageContingent(database.DB, user, contestant.ContingentID) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	var input services.ContestantInput
	if !utils.BindJSON(c, &input) {
		return
	}

	ic := utils.NormalizeIC(input.IC)
	var count int64
	database.DB.Model(&models.Contestant{}).Where("ic = ? AND id <> ?", ic, id).Count(&count)
	if count > 0 {
		contestantError(c, services.ErrDuplicateIC)
		return
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(input.Name),
		"ic":          ic,
		"gender":      strings.ToUpper(input.Gender),
		"age":         input.Age,
		"edu_level":   strings.ToLower(input.EduLevel),
		"class_grade": input.ClassGrade,
		"class_name":  input.ClassName,
		"email":       input.Email,
		"phone":       input.Phone,
		"is_ppki":     input.IsPPKI,
	}
	if err := database.DB.Model(&contestant).Updates(updates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdate)
		return
	}
	database.DB.First(&contestant, id)
	c.JSON(http.StatusOK, contestant)
}

// DeleteContestant removes a contestant who is not in any team
// @Summary Delete a contestant
// @Tags Contestants
// @Param id path int true "Contestant ID"
// @Success 204
// @Failure 403,404,409 {object} map[string]string
// @Router /participants/contestants/{id} [delete]
// @Security Bearer
func DeleteContestant(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var contestant models.Contestant
	if err := database.DB.First(&contestant, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestantNotFound)
		return
	}
	if !services.CanManageContingent(database.DB, user, contestant.ContingentID) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	var memberships int64
	database.DB.Model(&models.TeamMember{}).Where("contestant_id = ?", id).Count(&memberships)
	if memberships > 0 {
		response.Error(c, http.StatusConflict, ErrContestantInTeam)
		return
	}

	if err := database.DB.Delete(&contestant).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetContestants lists contestants for organizers
// @Summary List contestants
// @Tags Contestants
// @Produce json
// @Param search query string false "Name or IC"
// @Param contingentId query int false "Contingent"
// @Param eduLevel query string false "Education level"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/contestants [get]
// @Security Bearer
func GetContestants(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.Contestant{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		if ic := utils.NormalizeIC(search); ic != "" {
			query = query.Where("(LOWER(name) LIKE ? OR ic LIKE ?)", like, "%"+ic+"%")
		} else {
			query = query.Where("LOWER(name) LIKE ?", like)
		}
	}
	if contingentID := utils.QueryUint(c, "contingentId"); contingentID != nil {
		query = query.Where("contingent_id = ?", *contingentID)
	}
	if level := strings.ToLower(c.Query("eduLevel")); level != "" {
		query = query.Where("edu_level = ?", level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContestants)
		return
	}
	contestants := []models.Contestant{}
	if err := query.Scopes(pagination.Scope).Preload("Contingent").Order("name").Find(&contestants).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContestants)
		return
	}
	response.Paginated(c, contestants, pagination.WithTotal(total))
}

// GetContestant returns one contestant with its contingent
// @Summary Get a contestant
// @Tags Contestants
// @Produce json
// @Param id path int true "Contestant ID"
// @Success 200 {object} models.Contestant
// @Failure 404 {object} map[string]string
// @Router /organizer/contestants/{id} [get]
// @Security Bearer
func GetContestant(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contestant models.Contestant
	if err := database.DB.Preload("Contingent").First(&contestant, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestantNotFound)
		return
	}
	c.JSON(http.StatusOK, contestant)
}

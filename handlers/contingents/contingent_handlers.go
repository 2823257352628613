package contingents

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

// GetMyContingents lists the contingents managed by the participant
// @Summary List my contingents
// @Tags Contingents
// @Produce json
// @Success 200 {array} models.Contingent
// @Failure 401,500 {object} map[string]string
// @Router /participants/contingents [get]
// @Security Bearer
func GetMyContingents(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	ids, err := services.ManagedContingentIDs(database.DB, user.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
		return
	}

	contingents := []models.Contingent{}
	if len(ids) > 0 {
		if err := database.DB.Preload("School").Preload("HigherInstitution").Preload("State").
			Where("id IN ?", ids).Order("name").Find(&contingents).Error; err != nil {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
			return
		}
	}
	c.JSON(http.StatusOK, contingents)
}

// CreateContingent creates a contingent owned by the participant
// @Summary Create a contingent
// @Tags Contingents
// @Accept json
// @Produce json
// @Param contingent body ContingentRequest true "Contingent"
// @Success 201 {object} models.Contingent
// @Failure 400,409,500 {object} map[string]string
// @Router /participants/contingents [post]
// @Security Bearer
func CreateContingent(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	var req ContingentRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	contingent := models.Contingent{
		Name:                strings.TrimSpace(req.Name),
		ShortName:           req.ShortName,
		LogoUrl:             req.LogoUrl,
		ContingentType:      req.ContingentType,
		SchoolID:            req.SchoolID,
		HigherInstitutionID: req.HigherInstitutionID,
		StateID:             req.StateID,
	}
	if err := services.CreateContingent(database.DB, &contingent, user.ID); err != nil {
		if errors.Is(err, services.ErrContingentExists) {
			response.Error(c, http.StatusConflict, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, ErrFailedToCreate)
		return
	}
	c.JSON(http.StatusCreated, contingent)
}

// UpdateContingent updates a contingent managed by the user
// @Summary Update a contingent
// @Tags Contingents
// @Accept json
// @Produce json
// @Param id path int true "Contingent ID"
// @Param contingent body ContingentRequest true "Contingent"
// @Success 200 {object} models.Contingent
// @Failure 400,403,404,500 {object} map[string]string
// @Router /participants/contingents/{id} [put]
// @Security Bearer
func UpdateContingent(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var contingent models.Contingent
	if err := database.DB.First(&contingent, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContingentNotFound)
		return
	}
	if !services.CanManageContingent(database.DB, user, id) {
		response.Error(c, http.StatusForbidden, ErrNotManager)
		return
	}

	var req ContingentRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{
		"name":                  strings.TrimSpace(req.Name),
		"short_name":            req.ShortName,
		"logo_url":              req.LogoUrl,
		"contingent_type":       req.ContingentType,
		"school_id":             req.SchoolID,
		"higher_institution_id": req.HigherInstitutionID,
		"state_id":              req.StateID,
	}
	if err := database.DB.Model(&contingent).Updates(updates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdate)
		return
	}
	database.DB.First(&contingent, id)
	c.JSON(http.StatusOK, contingent)
}

// SearchContingents finds contingents by name
// @Summary Search contingents
// @Tags Contingents
// @Produce json
// @Param q query string false "Name filter"
// @Success 200 {array} models.Contingent
// @Router /contingents/search [get]
// @Security Bearer
func SearchContingents(c *gin.Context) {
	query := database.DB.Model(&models.Contingent{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	contingents := []models.Contingent{}
	if err := query.Order("name").Limit(50).Find(&contingents).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
		return
	}
	c.JSON(http.StatusOK, contingents)
}

// GetContingents lists contingents for organizers
// @Summary List contingents
// @Tags Contingents
// @Produce json
// @Param search query string false "Name filter"
// @Param stateId query int false "State"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/contingents [get]
// @Security Bearer
func GetContingents(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.Contingent{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if stateID := utils.QueryUint(c, "stateId"); stateID != nil {
		query = query.Where("state_id = ?", *stateID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
		return
	}

	contingents := []models.Contingent{}
	if err := query.Scopes(pagination.Scope).Preload("State").Preload("School").Preload("HigherInstitution").
		Order("name").Find(&contingents).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContingents)
		return
	}
	response.Paginated(c, contingents, pagination.WithTotal(total))
}

// GetContingent returns a contingent with its managers
// @Summary Get a contingent
// @Tags Contingents
// @Produce json
// @Param id path int true "Contingent ID"
// @Success 200 {object} models.Contingent
// @Failure 404 {object} map[string]string
// @Router /organizer/contingents/{id} [get]
// @Security Bearer
func GetContingent(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contingent models.Contingent
	if err := database.DB.Preload("Managers.User").Preload("State").Preload("School").Preload("HigherInstitution").
		First(&contingent, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContingentNotFound)
		return
	}
	c.JSON(http.StatusOK, contingent)
}

// DeleteContingent removes an empty contingent
// @Summary Delete a contingent
// @Tags Contingents
// @Param id path int true "Contingent ID"
// @Success 204
// @Failure 404,409,500 {object} map[string]string
// @Router /organizer/contingents/{id} [delete]
// @Security Bearer
func DeleteContingent(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contingent models.Contingent
	if err := database.DB.First(&contingent, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContingentNotFound)
		return
	}

	var contestants, teams int64
	database.DB.Model(&models.Contestant{}).Where("contingent_id = ?", id).Count(&contestants)
	database.DB.Model(&models.Team{}).Where("contingent_id = ?", id).Count(&teams)
	if contestants+teams > 0 {
		response.Error(c, http.StatusConflict, ErrContingentInUse)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contingent_id = ?", id).Delete(&models.ContingentManager{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contingent_id = ?", id).Delete(&models.ContingentRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&contingent).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadContingentReport exports every contingent as XLSX
// @Summary Contingent report
// @Tags Contingents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /organizer/contingents/report.xlsx [get]
// @Security Bearer
func DownloadContingentReport(c *gin.Context) {
	data, err := services.ContingentReportWorkbook(database.DB)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToReport)
		return
	}
	utils.SendXLSX(c, "contingents.xlsx", data)
}

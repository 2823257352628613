package reference

import (
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// GetZones lists the zones with their states
// @Summary List zones
// @Tags Reference
// @Produce json
// @Success 200 {array} models.Zone
// @Router /reference/zones [get]
func GetZones(c *gin.Context) {
	zones := []models.Zone{}
	if err := database.DB.Preload("States").Order("name").Find(&zones).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetData)
		return
	}
	c.JSON(http.StatusOK, zones)
}

// GetStates lists the states, optionally of one zone
// @Summary List states
// @Tags Reference
// @Produce json
// @Param zoneId query int false "Zone"
// @Success 200 {array} models.State
// @Router /reference/states [get]
func GetStates(c *gin.Context) {
	query := database.DB.Model(&models.State{})
	if zoneID := utils.QueryUint(c, "zoneId"); zoneID != nil {
		query = query.Where("zone_id = ?", *zoneID)
	}
	states := []models.State{}
	if err := query.Order("name").Find(&states).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetData)
		return
	}
	c.JSON(http.StatusOK, states)
}

// GetSchools searches schools by name or code
// @Summary List schools
// @Tags Reference
// @Produce json
// @Param search query string false "Name or code"
// @Param stateId query int false "State"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /reference/schools [get]
func GetSchools(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.School{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", like, like)
	}
	if stateID := utils.QueryUint(c, "stateId"); stateID != nil {
		query = query.Where("state_id = ?", *stateID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetData)
		return
	}
	schools := []models.School{}
	if err := query.Scopes(pagination.Scope).Preload("State").Order("name").Find(&schools).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetData)
		return
	}
	response.Paginated(c, schools, pagination.WithTotal(total))
}

// GetInstitutions lists the higher institutions
// @Summary List higher institutions
// @Tags Reference
// @Produce json
// @Param search query string false "Name"
// @Success 200 {array} models.HigherInstitution
// @Router /reference/institutions [get]
func GetInstitutions(c *gin.Context) {
	query := database.DB.Model(&models.HigherInstitution{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	institutions := []models.HigherInstitution{}
	if err := query.Preload("State").Order("name").Find(&institutions).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetData)
		return
	}
	c.JSON(http.StatusOK, institutions)
}

// GetTargetGroups lists the target groups
// @Summary List target groups
// @Tags Reference
// @Produce json
// @Success 200 {array} models.TargetGroup
// @Router /reference/target-groups [get]
func GetTargetGroups(c *gin.Context) {
	groups := []models.TargetGroup{}
	if err := database.DB.Order("min_age, code").Find(&groups).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetData)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// ImportSchools upserts schools from an XLSX upload
// @Summary Import schools
// @Tags Reference
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} map[string]string
// @Router /organizer/reference/schools/import [post]
// @Security Bearer
func ImportSchools(c *gin.Context) {
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

	result, err := services.ImportSchools(database.DB, opened)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

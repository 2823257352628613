package certificates

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func findTemplate(c *gin.Context) (*models.CertTemplate, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var template models.CertTemplate
	if err := database.DB.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrTemplateNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &template, true
}

// apply copies the request onto the template, normalizing the element list
func (req *TemplateRequest) apply(template *models.CertTemplate) (string, bool) {
	if req.WinnerRangeStart != nil && req.WinnerRangeEnd != nil && *req.WinnerRangeStart > *req.WinnerRangeEnd {
		return ErrInvalidWinnerRange, false
	}
	if req.BasePdfPath != "" && !services.ValidBasePdfPath(req.BasePdfPath) {
		return ErrInvalidBasePdfPath, false
	}
	configuration, err := services.NormalizeConfiguration(req.Configuration)
	if err != nil {
		return ErrInvalidConfiguration, false
	}

	template.TemplateName = strings.TrimSpace(req.TemplateName)
	template.BasePdfPath = req.BasePdfPath
	template.Configuration = datatypes.JSON(configuration)
	template.EventID = req.EventID
	template.QuizID = req.QuizID
	template.WinnerRangeStart = req.WinnerRangeStart
	template.WinnerRangeEnd = req.WinnerRangeEnd
	if req.Status != "" {
		template.Status = req.Status
	}
	if req.TargetType != "" {
		template.TargetType = req.TargetType
	}
	return "", true
}

// GetTemplates lists certificate templates
// @Summary List certificate templates
// @Tags Certificates
// @Produce json
// @Param status query string false "ACTIVE or INACTIVE"
// @Param targetType query string false "Target type"
// @Param search query string false "Template name"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/certificate-templates [get]
// @Security Bearer
func GetTemplates(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.CertTemplate{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if targetType := c.Query("targetType"); targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		query = query.Where("LOWER(template_name) LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	templates := []models.CertTemplate{}
	if err := query.Scopes(pagination.Scope).Order("updated_at DESC").Find(&templates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, templates, pagination.WithTotal(total))
}

// GetTemplate returns one certificate template
// @Summary Get a certificate template
// @Tags Certificates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.CertTemplate
// @Failure 404 {object} map[string]string
// @Router /organizer/certificate-templates/{id} [get]
// @Security Bearer
func GetTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateTemplate creates a certificate template
// @Summary Create a certificate template
// @Tags Certificates
// @Accept json
// @Produce json
// @Param template body TemplateRequest true "Template"
// @Success 201 {object} models.CertTemplate
// @Failure 400 {object} map[string]string
// @Router /organizer/certificate-templates [post]
// @Security Bearer
func CreateTemplate(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	var req TemplateRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	template := models.CertTemplate{
		Status:     models.TemplateStatusActive,
		TargetType: models.TargetGeneral,
		CreatedBy:  user.ID,
	}
	if msg, ok := req.apply(&template); !ok {
		response.Error(c, http.StatusBadRequest, msg)
		return
	}
	if err := database.DB.Create(&template).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate replaces a certificate template's layout and settings
// @Summary Update a certificate template
// @Tags Certificates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param template body TemplateRequest true "Template"
// @Success 200 {object} models.CertTemplate
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/certificate-templates/{id} [put]
// @Security Bearer
func UpdateTemplate(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	if msg, ok := req.apply(template); !ok {
		response.Error(c, http.StatusBadRequest, msg)
		return
	}
	template.UpdatedBy = &user.ID
	if err := database.DB.Save(template).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate deactivates a template, issued certificates keep referring to it
// @Summary Deactivate a certificate template
// @Tags Certificates
// @Param id path int true "Template ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/certificate-templates/{id} [delete]
// @Security Bearer
func DeleteTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	if err := database.DB.Model(template).Update("status", models.TemplateStatusInactive).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgTemplateDeactivated})
}

// DuplicateTemplate copies a template under a "(Copy)" name
// @Summary Duplicate a certificate template
// @Tags Certificates
// @Produce json
// @Param id path int true "Template ID"
// @Success 201 {object} models.CertTemplate
// @Failure 404 {object} map[string]string
// @Router /organizer/certificate-templates/{id}/duplicate [post]
// @Security Bearer
func DuplicateTemplate(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	template, ok := findTemplate(c)
	if !ok {
		return
	}

	copied, err := services.NewCertificateService(database.DB).DuplicateTemplate(template.ID, user.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, copied)
}

// GenerateForEventParticipants issues the template to every contestant present at its event
// @Summary Issue certificates to event participants
// @Tags Certificates
// @Produce json
// @Param id path int true "Template ID"
// @Success 201 {object} services.BulkIssueResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/certificate-templates/{id}/generate-event [post]
// @Security Bearer
func GenerateForEventParticipants(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	template, ok := findTemplate(c)
	if !ok {
		return
	}

	result, err := services.NewCertificateService(database.DB).IssueForEventParticipants(template, user.ID)
	switch {
	case errors.Is(err, services.ErrTemplateWithoutEvent):
		response.Error(c, http.StatusBadRequest, ErrTemplateWithoutEvent)
		return
	case errors.Is(err, services.ErrTemplateInactive):
		response.Error(c, http.StatusBadRequest, ErrTemplateInactive)
		return
	case err != nil:
		logger.Log.WithError(err).WithField("template_id", template.ID).Error("failed to issue event certificates")
		response.Error(c, http.StatusInternalServerError, ErrFailedToIssue)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"template_id": template.ID,
		"event_id":    *template.EventID,
		"issued":      len(result.Issued),
		"skipped":     result.Skipped,
	}).Info("event certificates issued")
	c.JSON(http.StatusCreated, result)
}

// GenerateForEventWinners issues a winner template to the members of the placed teams of its event
// @Summary Issue certificates to event winners
// @Tags Certificates
// @Produce json
// @Param id path int true "Template ID"
// @Success 201 {object} services.BulkIssueResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/certificate-templates/{id}/generate-winners [post]
// @Security Bearer
func GenerateForEventWinners(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	template, ok := findTemplate(c)
	if !ok {
		return
	}

	result, err := services.NewCertificateService(database.DB).IssueForEventWinners(template, user.ID)
	switch {
	case errors.Is(err, services.ErrTemplateWithoutEvent):
		response.Error(c, http.StatusBadRequest, ErrTemplateWithoutEvent)
		return
	case errors.Is(err, services.ErrTemplateNotForWinners):
		response.Error(c, http.StatusBadRequest, ErrTemplateNotForWinner)
		return
	case errors.Is(err, services.ErrTemplateInactive):
		response.Error(c, http.StatusBadRequest, ErrTemplateInactive)
		return
	case err != nil:
		logger.Log.WithError(err).WithField("template_id", template.ID).Error("failed to issue winner certificates")
		response.Error(c, http.StatusInternalServerError, ErrFailedToIssue)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"template_id": template.ID,
		"event_id":    *template.EventID,
		"issued":      len(result.Issued),
		"updated":     len(result.Updated),
	}).Info("winner certificates issued")
	c.JSON(http.StatusCreated, result)
}

func yearQuery(c *gin.Context) int {
	year, _ := strconv.Atoi(c.Query("year"))
	return year
}

// GetTemplateSerials lists the serial counters of a template
// @Summary List a template's serial counters
// @Tags Certificates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {array} models.CertificateSerial
// @Router /organizer/certificate-templates/{id}/serials [get]
// @Security Bearer
func GetTemplateSerials(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	serials, err := services.GetTemplateSerials(database.DB, template.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	if serials == nil {
		serials = []models.CertificateSerial{}
	}
	c.JSON(http.StatusOK, serials)
}

// PreviewSerialNumber shows the serial number the next certificate would get
// @Summary Preview the next serial number
// @Tags Certificates
// @Produce json
// @Param id path int true "Template ID"
// @Param targetType query string false "Target type, defaults to the template's"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /organizer/certificate-templates/{id}/serials/preview [get]
// @Security Bearer
func PreviewSerialNumber(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	targetType := c.DefaultQuery("targetType", template.TargetType)

	serial, err := services.PreviewNextSerialNumber(database.DB, template.ID, targetType, yearQuery(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTargetType) {
			response.Error(c, http.StatusBadRequest, ErrInvalidTargetType)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"serialNumber": serial})
}

// ResetSerialSequence sets a template's counter back to zero
// @Summary Reset a serial counter
// @Tags Certificates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param counter body ResetSequenceRequest true "Counter"
// @Success 200 {object} map[string]string
// @Router /organizer/certificate-templates/{id}/serials/reset [post]
// @Security Bearer
func ResetSerialSequence(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var req ResetSequenceRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if err := services.ResetSequence(database.DB, template.ID, req.TargetType, req.Year); err != nil {
		if errors.Is(err, services.ErrInvalidTargetType) {
			response.Error(c, http.StatusBadRequest, ErrInvalidTargetType)
			return
		}
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgSequenceReset})
}

// GetSerialStats summarises the serial counters of a year
// @Summary Serial number statistics
// @Tags Certificates
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {array} services.SerialStat
// @Router /organizer/certificate-serials/stats [get]
// @Security Bearer
func GetSerialStats(c *gin.Context) {
	stats, err := services.GetSerialStats(database.DB, yearQuery(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, stats)
}

package email

import (
	"errors"
	"net/http"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// newEmailService builds the service used to send mail
var newEmailService = func() *services.EmailService {
	return services.NewEmailService(database.DB)
}

func findTemplate(c *gin.Context) (*models.EmailTemplate, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var template models.EmailTemplate
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

func (req *TemplateRequest) apply(template *models.EmailTemplate) {
	template.TemplateName = req.TemplateName
	template.Title = req.Title
	template.Subject = req.Subject
	template.Content = req.Content
	template.DeliveryMethod = req.DeliveryMethod
	if template.DeliveryMethod == "" {
		template.DeliveryMethod = "SMTP"
	}
}

// GetTemplates lists email templates
// @Summary List email templates
// @Tags Email
// @Produce json
// @Success 200 {array} models.EmailTemplate
// @Router /organizer/email-templates [get]
// @Security Bearer
func GetTemplates(c *gin.Context) {
	templates := []models.EmailTemplate{}
	if err := database.DB.Order("template_name").Find(&templates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate returns one email template
// @Summary Get an email template
// @Tags Email
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.EmailTemplate
// @Failure 404 {object} map[string]string
// @Router /organizer/email-templates/{id} [get]
// @Security Bearer
func GetTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateTemplate stores an email template
// @Summary Create an email template
// @Tags Email
// @Accept json
// @Produce json
// @Param template body TemplateRequest true "Template"
// @Success 201 {object} models.EmailTemplate
// @Failure 400 {object} map[string]string
// @Router /organizer/email-templates [post]
// @Security Bearer
func CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	template := models.EmailTemplate{}
	req.apply(&template)
	if user, err := middleware.GetUserFromRequest(c); err == nil {
		template.CreatedBy = user.ID
	}
	if err := database.DB.Create(&template).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate replaces an email template
// @Summary Update an email template
// @Tags Email
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param template body TemplateRequest true "Template"
// @Success 200 {object} models.EmailTemplate
// @Failure 404 {object} map[string]string
// @Router /organizer/email-templates/{id} [put]
// @Security Bearer
func UpdateTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	req.apply(template)
	if err := database.DB.Save(template).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate removes a template no campaign uses
// @Summary Delete an email template
// @Tags Email
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/email-templates/{id} [delete]
// @Security Bearer
func DeleteTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var used int64
	if err := database.DB.Model(&models.EmailCampaign{}).Where("template_id = ?", template.ID).Count(&used).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	if used > 0 {
		response.Error(c, http.StatusConflict, ErrTemplateInUse)
		return
	}
	if err := database.DB.Delete(template).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgTemplateDeleted})
}

// SendTestEmail renders a template for one address and sends it
// @Summary Send a test email
// @Tags Email
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body TestEmailRequest true "Recipient"
// @Success 200 {object} models.EmailOutgoing
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /organizer/email-templates/{id}/test [post]
// @Security Bearer
func SendTestEmail(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var req TestEmailRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	outgoing, err := newEmailService().SendTemplate(template, req.Email, req.Placeholders)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMailerNotConfigured):
			response.Error(c, http.StatusServiceUnavailable, ErrMailerNotConfigured)
		case outgoing != nil:
			logger.Log.WithError(err).WithField("template_id", template.ID).Warn("Test email failed")
			response.Error(c, http.StatusBadGateway, ErrFailedToSend+": "+err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, ErrFailedToSend)
		}
		return
	}
	c.JSON(http.StatusOK, outgoing)
}

package certificates

import (
	"errors"
	"net/http"
	"strings"

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

func findCertificate(c *gin.Context) (*models.Certificate, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var cert models.Certificate
	if err := database.DB.Preload("Template").First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrCertificateNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &cert, true
}

// GetCertificates lists issued certificates
// @Summary List certificates
// @Tags Certificates
// @Produce json
// @Param templateId query int false "Template ID"
// @Param status query string false "Status"
// @Param search query string false "Recipient name, IC or serial number"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/certificates [get]
// @Security Bearer
func GetCertificates(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.Certificate{})
	if templateID := utils.QueryUint(c, "templateId"); templateID != nil {
		query = query.Where("template_id = ?", *templateID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(recipient_name) LIKE ? OR ic_number LIKE ? OR serial_number LIKE ?)", like, like, "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	certificates := []models.Certificate{}
	if err := query.Scopes(pagination.Scope).Order("created_at DESC").Find(&certificates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, certificates, pagination.WithTotal(total))
}

// GetCertificate returns one certificate with its template
// @Summary Get a certificate
// @Tags Certificates
// @Produce json
// @Param id path int true "Certificate ID"
// @Success 200 {object} models.Certificate
// @Failure 404 {object} map[string]string
// @Router /organizer/certificates/{id} [get]
// @Security Bearer
func GetCertificate(c *gin.Context) {
	cert, ok := findCertificate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cert)
}

// GenerateCertificates issues a certificate from a template for every recipient
// @Summary Issue certificates
// @Tags Certificates
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Template and recipients"
// @Success 201 {object} services.BulkIssueResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/certificates/generate [post]
// @Security Bearer
func GenerateCertificates(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	var req GenerateRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var template models.CertTemplate
	if err := database.DB.First(&template, req.TemplateID).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrTemplateNotFound)
		return
	}
	if template.Status != models.TemplateStatusActive {
		response.Error(c, http.StatusBadRequest, ErrTemplateInactive)
		return
	}

	service := services.NewCertificateService(database.DB)
	result := services.BulkIssueResult{Issued: []models.Certificate{}, Failed: []string{}}
	for _, recipient := range req.Recipients {
		cert, err := service.Issue(&template, recipient, user.ID)
		if err != nil {
			logger.Log.WithError(err).WithField("template_id", template.ID).Warn("failed to issue certificate")
			result.Failed = append(result.Failed, recipient.RecipientName)
			continue
		}
		result.Issued = append(result.Issued, *cert)
	}
	c.JSON(http.StatusCreated, result)
}

// DownloadCertificate renders a certificate as PDF
// @Summary Download a certificate
// @Tags Certificates
// @Produce application/pdf
// @Param id path int true "Certificate ID"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/certificates/{id}/download [get]
// @Security Bearer
func DownloadCertificate(c *gin.Context) {
	cert, ok := findCertificate(c)
	if !ok {
		return
	}

	data, err := services.NewCertificateService(database.DB).Render(cert)
	if err != nil {
		if errors.Is(err, services.ErrMissingBasePdf) {
			response.Error(c, http.StatusBadRequest, ErrTemplateHasNoBasePdf)
			return
		}
		if errors.Is(err, services.ErrInvalidBasePdfPath) {
			response.Error(c, http.StatusBadRequest, ErrInvalidBasePdfPath)
			return
		}
		logger.Log.WithError(err).WithField("certificate_id", cert.ID).Error("failed to render certificate")
		response.Error(c, http.StatusInternalServerError, ErrFailedToRender)
		return
	}

	if cert.Status == models.CertificateGenerated {
		database.DB.Model(cert).Update("status", models.CertificateDownloaded)
	}
	templateName := ""
	if cert.Template != nil {
		templateName = cert.Template.TemplateName
	}
	c.Header("Content-Disposition", `attachment; filename="`+services.CertificateFileName(templateName, cert.RecipientName, cert.UniqueCode)+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// DownloadCertificates renders several certificates into one zip archive
// @Summary Download certificates as zip
// @Tags Certificates
// @Accept json
// @Produce application/zip
// @Param request body DownloadRequest true "Certificate IDs"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /organizer/certificates/download [post]
// @Security Bearer
func DownloadCertificates(c *gin.Context) {
	var req DownloadRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var certs []models.Certificate
	if err := database.DB.Preload("Template").Where("id IN ?", req.IDs).Order("id").Find(&certs).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	renderable := certs[:0]
	for _, cert := range certs {
		if cert.Template != nil && cert.Template.BasePdfPath != "" {
			renderable = append(renderable, cert)
		}
	}
	if len(renderable) == 0 {
		response.Error(c, http.StatusBadRequest, ErrNothingToDownload)
		return
	}

	archive, err := services.NewCertificateService(database.DB).RenderZip(c.Request.Context(), renderable)
	if err != nil {
		logger.Log.WithError(err).Error("failed to render certificate archive")
		response.Error(c, http.StatusInternalServerError, ErrFailedToRender)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="certificates.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// DeleteCertificate deletes an issued certificate, its file is left for the cleanup command
// @Summary Delete a certificate
// @Tags Certificates
// @Param id path int true "Certificate ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /organizer/certificates/{id} [delete]
// @Security Bearer
func DeleteCertificate(c *gin.Context) {
	cert, ok := findCertificate(c)
	if !ok {
		return
	}
	if err := database.DB.Delete(&models.Certificate{}, cert.ID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.Status(http.StatusNoContent)
}

// VerifyCertificate checks a certificate by serial number or unique code
// @Summary Verify a certificate
// @Tags Certificates
// @Produce json
// @Param serial query string false "Serial number"
// @Param code query string false "Unique code"
// @Success 200 {object} VerificationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /certificates/verify [get]
func VerifyCertificate(c *gin.Context) {
	serial := strings.TrimSpace(c.Query("serial"))
	code := strings.TrimSpace(c.Query("code"))

	var cert *models.Certificate
	var err error
	switch {
	case serial != "":
		if !services.ValidateSerialNumber(serial) {
			response.Error(c, http.StatusBadRequest, ErrInvalidSerialNumber)
			return
		}
		cert, err = services.GetCertificateBySerial(database.DB, serial)
	case code != "":
		var found models.Certificate
		err = database.DB.Preload("Template").Where("unique_code = ?", code).First(&found).Error
		cert = &found
	default:
		response.Error(c, http.StatusBadRequest, ErrMissingVerifyCode)
		return
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrCertificateNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return
	}

	result := VerificationResponse{
		Valid:          true,
		RecipientName:  cert.RecipientName,
		ContingentName: cert.ContingentName,
		ContestName:    cert.ContestName,
		AwardTitle:     cert.AwardTitle,
		SerialNumber:   cert.SerialNumber,
		UniqueCode:     cert.UniqueCode,
	}
	if cert.Template != nil {
		result.TemplateName = cert.Template.TemplateName
	}
	if cert.IssuedAt != nil {
		result.IssuedAt = cert.IssuedAt.Format("02/01/2006")
	}
	c.JSON(http.StatusOK, result)
}

package email

import (
	"encoding/json"
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

func findCampaign(c *gin.Context) (*models.EmailCampaign, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var campaign models.EmailCampaign
	if err := database.DB.Preload("Template").First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrCampaignNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &campaign, true
}

func templateExists(c *gin.Context, id uint) bool {
	var count int64
	if err := database.DB.Model(&models.EmailTemplate{}).Where("id = ?", id).Count(&count).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return false
	}
	if count == 0 {
		response.Error(c, http.StatusBadRequest, ErrTemplateNotFound)
		return false
	}
	return true
}

func campaignStats(campaignID uint) (CampaignStats, error) {
	var stats CampaignStats
	counts := []struct {
		Status string
		Count  int64
	}{}
	if err := database.DB.Model(&models.EmailRecipient{}).Select("status, COUNT(*) AS count").
		Where("campaign_id = ?", campaignID).Group("status").Scan(&counts).Error; err != nil {
		return stats, err
	}
	for _, row := range counts {
		switch row.Status {
		case models.RecipientQueued:
			stats.Queued = row.Count
		case models.RecipientSent:
			stats.Sent = row.Count
		case models.RecipientFailed:
			stats.Failed = row.Count
		}
	}
	err := database.DB.Model(&models.EmailOutgoing{}).
		Where("campaign_id = ? AND opened_at IS NOT NULL", campaignID).Count(&stats.Opened).Error
	return stats, err
}

// refreshTotal recounts the recipients of a campaign
func refreshTotal(campaign *models.EmailCampaign) error {
	var total int64
	if err := database.DB.Model(&models.EmailRecipient{}).Where("campaign_id = ?", campaign.ID).Count(&total).Error; err != nil {
		return err
	}
	campaign.TotalRecipients = int(total)
	return database.DB.Model(campaign).Update("total_recipients", total).Error
}

// GetCampaigns lists email campaigns
// @Summary List email campaigns
// @Tags Email
// @Produce json
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/email-campaigns [get]
// @Security Bearer
func GetCampaigns(c *gin.Context) {
	pagination := utils.GetPagination(c)
	query := database.DB.Model(&models.EmailCampaign{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	campaigns := []models.EmailCampaign{}
	if err := query.Preload("Template").Scopes(pagination.Scope).Order("created_at DESC, id DESC").Find(&campaigns).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, campaigns, pagination.WithTotal(total))
}

// GetCampaign returns a campaign with its delivery counters
// @Summary Get an email campaign
// @Tags Email
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} CampaignDetail
// @Failure 404 {object} map[string]string
// @Router /organizer/email-campaigns/{id} [get]
// @Security Bearer
func GetCampaign(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	stats, err := campaignStats(campaign.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, CampaignDetail{EmailCampaign: *campaign, Stats: stats})
}

// CreateCampaign creates a draft campaign
// @Summary Create an email campaign
// @Tags Email
// @Accept json
// @Produce json
// @Param campaign body CampaignRequest true "Campaign"
// @Success 201 {object} models.EmailCampaign
// @Failure 400 {object} map[string]string
// @Router /organizer/email-campaigns [post]
// @Security Bearer
func CreateCampaign(c *gin.Context) {
	var req CampaignRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if !templateExists(c, req.TemplateID) {
		return
	}
	campaign := models.EmailCampaign{
		CampaignName: req.CampaignName,
		Description:  req.Description,
		TemplateID:   req.TemplateID,
		Status:       models.CampaignDraft,
	}
	if user, err := middleware.GetUserFromRequest(c); err == nil {
		campaign.CreatedBy = user.ID
	}
	if err := database.DB.Create(&campaign).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// UpdateCampaign edits a draft campaign
// @Summary Update an email campaign
// @Tags Email
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param campaign body CampaignRequest true "Campaign"
// @Success 200 {object} models.EmailCampaign
// @Failure 409 {object} map[string]string
// @Router /organizer/email-campaigns/{id} [put]
// @Security Bearer
func UpdateCampaign(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	var req CampaignRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if campaign.Status != models.CampaignDraft {
		response.Error(c, http.StatusConflict, ErrCampaignNotDraft)
		return
	}
	if !templateExists(c, req.TemplateID) {
		return
	}
	campaign.CampaignName = req.CampaignName
	campaign.Description = req.Description
	campaign.TemplateID = req.TemplateID
	campaign.Template = nil
	if err := database.DB.Save(campaign).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign removes a campaign that is not being sent, with its recipients
// @Summary Delete an email campaign
// @Tags Email
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/email-campaigns/{id} [delete]
// @Security Bearer
func DeleteCampaign(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	if campaign.Status == models.CampaignInProgress {
		response.Error(c, http.StatusConflict, ErrCampaignInProgress)
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EmailOutgoing{}).Where("campaign_id = ?", campaign.ID).
			Updates(map[string]interface{}{"campaign_id": nil, "recipient_id": nil}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&models.EmailRecipient{}).Error; err != nil {
			return err
		}
		return tx.Delete(campaign).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgCampaignDeleted})
}

// GetRecipients lists the recipients of a campaign
// @Summary List campaign recipients
// @Tags Email
// @Produce json
// @Param id path int true "Campaign ID"
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/email-campaigns/{id}/recipients [get]
// @Security Bearer
func GetRecipients(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	pagination := utils.GetPagination(c)
	query := database.DB.Model(&models.EmailRecipient{}).Where("campaign_id = ?", campaign.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	recipients := []models.EmailRecipient{}
	if err := query.Scopes(pagination.Scope).Order("id").Find(&recipients).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, recipients, pagination.WithTotal(total))
}

// queueRecipients adds the addresses not yet in the campaign
func queueRecipients(campaign *models.EmailCampaign, inputs []RecipientInput) (*AddRecipientsResult, error) {
	var existing []string
	if err := database.DB.Model(&models.EmailRecipient{}).Where("campaign_id = ?", campaign.ID).
		Pluck("email", &existing).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing)+len(inputs))
	for _, e := range existing {
		seen[strings.ToLower(e)] = true
	}

	result := &AddRecipientsResult{}
	rows := make([]models.EmailRecipient, 0, len(inputs))
	for _, in := range inputs {
		address := strings.ToLower(strings.TrimSpace(in.Email))
		if address == "" || seen[address] {
			result.Skipped++
			continue
		}
		seen[address] = true

		recipient := models.EmailRecipient{CampaignID: campaign.ID, Email: address, Name: in.Name, Status: models.RecipientQueued}
		if len(in.Placeholders) > 0 {
			raw, err := json.Marshal(in.Placeholders)
			if err != nil {
				return nil, err
			}
			recipient.Placeholders = datatypes.JSON(raw)
		}
		rows = append(rows, recipient)
	}
	if len(rows) > 0 {
		if err := database.DB.CreateInBatches(&rows, 200).Error; err != nil {
			return nil, err
		}
	}
	result.Added = len(rows)
	if err := refreshTotal(campaign); err != nil {
		return nil, err
	}
	result.TotalRecipients = campaign.TotalRecipients
	return result, nil
}

// AddRecipients queues addresses for a campaign, skipping those already queued
// @Summary Add campaign recipients
// @Tags Email
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param recipients body RecipientsRequest true "Recipients"
// @Success 201 {object} AddRecipientsResult
// @Failure 409 {object} map[string]string
// @Router /organizer/email-campaigns/{id}/recipients [post]
// @Security Bearer
func AddRecipients(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	var req RecipientsRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if campaign.Status == models.CampaignCompleted {
		response.Error(c, http.StatusConflict, ErrCampaignCompleted)
		return
	}
	result, err := queueRecipients(campaign, req.Recipients)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ImportRecipients queues the addresses of an uploaded workbook
// @Summary Import campaign recipients from XLSX
// @Description The first sheet with an email column is read; other columns become placeholders.
// @Tags Email
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Campaign ID"
// @Param file formData file true "XLSX file"
// @Success 201 {object} AddRecipientsResult
// @Failure 400 {object} map[string]string
// @Router /organizer/email-campaigns/{id}/recipients/import [post]
// @Security Bearer
func ImportRecipients(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	if campaign.Status == models.CampaignCompleted {
		response.Error(c, http.StatusConflict, ErrCampaignCompleted)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to get file: "+err.Error())
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to open file: "+err.Error())
		return
	}
	defer opened.Close()

	rows, err := services.ParseRecipientWorkbook(opened)
	if err != nil {
		if errors.Is(err, services.ErrMissingColumns) {
			response.Error(c, http.StatusBadRequest, ErrMissingEmailColumn)
		} else {
			response.Error(c, http.StatusBadRequest, ErrFailedToParseFile)
		}
		return
	}

	inputs := make([]RecipientInput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, RecipientInput{Email: row.Email, Name: row.Name, Placeholders: row.Placeholders})
	}
	result, err := queueRecipients(campaign, inputs)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// DeleteRecipient removes a queued recipient
// @Summary Remove a campaign recipient
// @Tags Email
// @Produce json
// @Param id path int true "Campaign ID"
// @Param recipientId path int true "Recipient ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/email-campaigns/{id}/recipients/{recipientId} [delete]
// @Security Bearer
func DeleteRecipient(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	recipientID, ok := utils.ParseUintParam(c, "recipientId")
	if !ok {
		return
	}
	result := database.DB.Where("id = ? AND campaign_id = ? AND status = ?", recipientID, campaign.ID, models.RecipientQueued).
		Delete(&models.EmailRecipient{})
	if result.Error != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, ErrRecipientNotFound)
		return
	}
	if err := refreshTotal(campaign); err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgRecipientDeleted})
}

// SendCampaignBatch sends the next batch of queued recipients
// @Summary Send a campaign batch
// @Tags Email
// @Produce json
// @Param id path int true "Campaign ID"
// @Param batchSize query int false "Recipients per batch (default 50)"
// @Success 200 {object} services.BatchResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/email-campaigns/{id}/send [post]
// @Security Bearer
func SendCampaignBatch(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	if campaign.Status == models.CampaignCompleted {
		response.Error(c, http.StatusConflict, ErrCampaignCompleted)
		return
	}
	batchSize := services.DefaultCampaignBatchSize
	if raw := c.Query("batchSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			response.Error(c, http.StatusBadRequest, ErrInvalidBatchSize)
			return
		}
		batchSize = n
	}

	result, err := newEmailService().SendCampaignBatch(campaign.ID, batchSize)
	if err != nil {
		logger.Log.WithError(err).WithField("campaign_id", campaign.ID).Error("Campaign batch failed")
		response.Error(c, http.StatusInternalServerError, ErrFailedToSend)
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"sent":        result.Sent,
		"failed":      result.Failed,
		"remaining":   result.Remaining,
	}).Info("Campaign batch processed")
	c.JSON(http.StatusOK, result)
}

// RetryFailedRecipients queues the failed recipients of a campaign again
// @Summary Retry failed campaign recipients
// @Tags Email
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/email-campaigns/{id}/retry-failed [post]
// @Security Bearer
func RetryFailedRecipients(c *gin.Context) {
	campaign, ok := findCampaign(c)
	if !ok {
		return
	}
	var requeued int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.EmailRecipient{}).
			Where("campaign_id = ? AND status = ?", campaign.ID, models.RecipientFailed).
			Update("status", models.RecipientQueued)
		if result.Error != nil {
			return result.Error
		}
		requeued = result.RowsAffected
		if requeued > 0 && campaign.Status == models.CampaignCompleted {
			return tx.Model(campaign).Updates(map[string]interface{}{
				"status":       models.CampaignInProgress,
				"completed_at": nil,
			}).Error
		}
		return nil
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgFailedRecipientsQueued, "requeued": requeued})
}

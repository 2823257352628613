package email

import (
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// transparentGIF is a 1x1 transparent GIF
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackOpen records an email open and always answers with the pixel
// @Summary Email open tracking pixel
// @Tags Email
// @Produce image/gif
// @Param file path string true "Tracking ID followed by .gif"
// @Success 200 {file} file
// @Router /email/track/{file} [get]
func TrackOpen(c *gin.Context) {
	trackingID := strings.TrimSuffix(c.Param("file"), ".gif")
	if trackingID != "" {
		if err := newEmailService().RecordOpen(trackingID); err != nil {
			logger.Log.WithError(err).WithField("tracking_id", trackingID).Warn("Failed to record email open")
		}
	}
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "image/gif", transparentGIF)
}

// GetOutgoing lists sent and attempted emails
// @Summary List outgoing emails
// @Tags Email
// @Produce json
// @Param campaignId query int false "Campaign ID"
// @Param status query string false "Delivery status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/email-outgoing [get]
// @Security Bearer
func GetOutgoing(c *gin.Context) {
	pagination := utils.GetPagination(c)
	query := database.DB.Model(&models.EmailOutgoing{})
	if campaignID := utils.QueryUint(c, "campaignId"); campaignID != nil {
		query = query.Where("campaign_id = ?", *campaignID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("delivery_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	outgoing := []models.EmailOutgoing{}
	if err := query.Omit("content").Scopes(pagination.Scope).Order("id DESC").Find(&outgoing).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, outgoing, pagination.WithTotal(total))
}

package announcements

import (
	"net/http"
	"strconv"
	"time"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// GetPublishedAnnouncements lists the active announcements already published, newest first
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Param limit query int false "Maximum number of items (default 10)"
// @Success 200 {array} models.Announcement
// @Router /announcements [get]
func GetPublishedAnnouncements(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}

	announcements := []models.Announcement{}
	if err := database.DB.Where("is_active = ? AND (published_at IS NULL OR published_at <= ?)", true, time.Now()).
		Order("COALESCE(published_at, created_at) DESC").Limit(limit).Find(&announcements).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// GetAnnouncements lists every announcement
// @Summary List all announcements
// @Tags Announcements
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/announcements [get]
// @Security Bearer
func GetAnnouncements(c *gin.Context) {
	pagination := utils.GetPagination(c)

	var total int64
	if err := database.DB.Model(&models.Announcement{}).Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	announcements := []models.Announcement{}
	if err := database.DB.Scopes(pagination.Scope).Order("created_at DESC").Find(&announcements).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, announcements, pagination.WithTotal(total))
}

func (req *AnnouncementRequest) apply(a *models.Announcement) {
	a.Title = req.Title
	a.Description = req.Description
	a.Link = req.Link
	a.Icon = req.Icon
	a.PublishedAt = req.PublishedAt
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
}

// CreateAnnouncement creates an announcement
// @Summary Create an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param announcement body AnnouncementRequest true "Announcement"
// @Success 201 {object} models.Announcement
// @Failure 400,500 {object} map[string]string
// @Router /organizer/announcements [post]
// @Security Bearer
func CreateAnnouncement(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	var req AnnouncementRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	announcement := models.Announcement{IsActive: true, CreatedBy: user.ID}
	req.apply(&announcement)
	if err := database.DB.Create(&announcement).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	// The column default wins over a false is_active on create
	if !announcement.IsActive {
		database.DB.Model(&announcement).Update("is_active", false)
	}
	c.JSON(http.StatusCreated, announcement)
}

// UpdateAnnouncement updates an announcement
// @Summary Update an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path int true "Announcement ID"
// @Param announcement body AnnouncementRequest true "Announcement"
// @Success 200 {object} models.Announcement
// @Failure 400,404,500 {object} map[string]string
// @Router /organizer/announcements/{id} [put]
// @Security Bearer
func UpdateAnnouncement(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var announcement models.Announcement
	if err := database.DB.First(&announcement, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrAnnouncementNotFound)
		return
	}
	var req AnnouncementRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	req.apply(&announcement)
	if err := database.DB.Save(&announcement).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// DeleteAnnouncement removes an announcement
// @Summary Delete an announcement
// @Tags Announcements
// @Param id path int true "Announcement ID"
// @Success 204
// @Failure 404,500 {object} map[string]string
// @Router /organizer/announcements/{id} [delete]
// @Security Bearer
func DeleteAnnouncement(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	result := database.DB.Delete(&models.Announcement{}, id)
	if result.Error != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, ErrAnnouncementNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

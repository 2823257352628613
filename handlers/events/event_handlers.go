package events

import (
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetActiveEvents lists the active events with their contests
// @Summary List active events
// @Tags Events
// @Produce json
// @Success 200 {array} models.Event
// @Router /events [get]
func GetActiveEvents(c *gin.Context) {
	events := []models.Event{}
	if err := database.DB.Preload("State").Preload("Zone").Where("is_active = ?", true).
		Order("start_date").Find(&events).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetEvents)
		return
	}
	c.JSON(http.StatusOK, events)
}

// EventDetails is an event with its contests
type EventDetails struct {
	models.Event
	Contests []models.EventContest `json:"contests"`
}

// GetEvent returns an event with its active contests
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} EventDetails
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func GetEvent(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var details EventDetails
	if err := database.DB.Preload("State").Preload("Zone").First(&details.Event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return
	}
	details.Contests = []models.EventContest{}
	if err := database.DB.Preload("Contest").Where("event_id = ? AND is_active = ?", id, true).
		Find(&details.Contests).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetEvents)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetEvents lists every event for organizers
// @Summary List events
// @Tags Events
// @Produce json
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/events [get]
// @Security Bearer
func GetEvents(c *gin.Context) {
	pagination := utils.GetPagination(c)
	query := database.DB.Model(&models.Event{})
	if status := strings.ToUpper(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetEvents)
		return
	}
	events := []models.Event{}
	if err := query.Scopes(pagination.Scope).Order("start_date DESC").Find(&events).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetEvents)
		return
	}
	response.Paginated(c, events, pagination.WithTotal(total))
}

func (req *EventRequest) apply(event *models.Event) {
	event.Name = strings.TrimSpace(req.Name)
	event.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	event.Description = req.Description
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.Venue = req.Venue
	event.ScopeArea = req.ScopeArea
	if event.ScopeArea == "" {
		event.ScopeArea = models.ScopeOpen
	}
	event.ZoneID = req.ZoneID
	event.StateID = req.StateID
}

func codeTaken(code string, exceptID uint) bool {
	var count int64
	database.DB.Model(&models.Event{}).Where("code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), exceptID).Count(&count)
	return count > 0
}

// CreateEvent creates an event open for registration
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param event body EventRequest true "Event"
// @Success 201 {object} models.Event
// @Failure 400,409,500 {object} map[string]string
// @Router /organizer/events [post]
// @Security Bearer
func CreateEvent(c *gin.Context) {
	var req EventRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if !req.EndDate.After(req.StartDate) {
		response.Error(c, http.StatusBadRequest, ErrInvalidDates)
		return
	}
	if codeTaken(req.Code, 0) {
		response.Error(c, http.StatusConflict, ErrCodeTaken)
		return
	}

	event := models.Event{Status: models.EventStatusOpen, IsActive: true}
	req.apply(&event)
	if err := database.DB.Create(&event).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent updates an event
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param event body EventRequest true "Event"
// @Success 200 {object} models.Event
// @Failure 400,404,409,500 {object} map[string]string
// @Router /organizer/events/{id} [put]
// @Security Bearer
func UpdateEvent(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return
	}
	var req EventRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if !req.EndDate.After(req.StartDate) {
		response.Error(c, http.StatusBadRequest, ErrInvalidDates)
		return
	}
	if codeTaken(req.Code, id) {
		response.Error(c, http.StatusConflict, ErrCodeTaken)
		return
	}

	req.apply(&event)
	if err := database.DB.Save(&event).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, event)
}

// SetEventStatus opens, closes or cuts off registration for an event
// @Summary Change the event status
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param status body StatusRequest true "Status"
// @Success 200 {object} models.Event
// @Failure 400,404 {object} map[string]string
// @Router /organizer/events/{id}/status [put]
// @Security Bearer
func SetEventStatus(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return
	}
	var req StatusRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	event.Status = req.Status
	if err := database.DB.Model(&event).Update("status", req.Status).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event without registrations or attendance
// @Summary Delete an event
// @Tags Events
// @Param id path int true "Event ID"
// @Success 204
// @Failure 404,409,500 {object} map[string]string
// @Router /organizer/events/{id} [delete]
// @Security Bearer
func DeleteEvent(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return
	}

	var registrations, attendance int64
	database.DB.Model(&models.EventContestTeam{}).
		Joins("JOIN event_contests ON event_contests.id = event_contest_teams.event_contest_id").
		Where("event_contests.event_id = ?", id).Count(&registrations)
	database.DB.Model(&models.AttendanceManager{}).Where("event_id = ?", id).Count(&attendance)
	if registrations+attendance > 0 {
		response.Error(c, http.StatusConflict, ErrEventInUse)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventContest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.AttendanceEndpoint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadRawList exports the registered teams and members of an event as XLSX
// @Summary Event raw list
// @Tags Events
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Event ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /organizer/events/{id}/registrations.xlsx [get]
// @Security Bearer
func DownloadRawList(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return
	}
	data, err := services.EventRawListWorkbook(database.DB, id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToReport)
		return
	}
	utils.SendXLSX(c, utils.SanitizeFilename(event.Code)+"-registrations.xlsx", data)
}

package attendance

import (
	"net/http"
	"time"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// eventFromPath loads the event of the :id parameter
func eventFromPath(c *gin.Context) (*models.Event, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrEventNotFound)
		return nil, false
	}
	return &event, true
}

// SyncAttendance creates the attendance rows of every approved registration
// @Summary Sync event attendance
// @Tags Attendance
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} services.SyncResult
// @Failure 404,500 {object} map[string]string
// @Router /organizer/events/{id}/attendance/sync [post]
// @Security Bearer
func SyncAttendance(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	result, err := services.SyncEventAttendance(database.DB, event.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSync+": "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStatistics returns present and absent counts of an event
// @Summary Attendance statistics
// @Tags Attendance
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} services.AttendanceStatistics
// @Router /organizer/events/{id}/attendance/stats [get]
// @Security Bearer
func GetStatistics(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	stats, err := services.GetAttendanceStatistics(database.DB, event.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetContestantAttendance lists the contestant attendance rows of an event
// @Summary Contestant attendance
// @Tags Attendance
// @Produce json
// @Param id path int true "Event ID"
// @Param status query string false "Present or Not Present"
// @Param contingentId query int false "Contingent"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/events/{id}/attendance/contestants [get]
// @Security Bearer
func GetContestantAttendance(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.AttendanceContestant{}).Where("event_id = ?", event.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("attendance_status = ?", status)
	}
	if contingentID := utils.QueryUint(c, "contingentId"); contingentID != nil {
		query = query.Where("contingent_id = ?", *contingentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	rows := []models.AttendanceContestant{}
	if err := query.Scopes(pagination.Scope).Preload("Contestant").Order("id").Find(&rows).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, rows, pagination.WithTotal(total))
}

// MarkAttendance sets attendance by hand for managers, contestants or teams
// @Summary Mark attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param mark body MarkRequest true "Rows to mark"
// @Success 200 {object} map[string]int64
// @Failure 400,404,500 {object} map[string]string
// @Router /organizer/events/{id}/attendance/mark [put]
// @Security Bearer
func MarkAttendance(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	var req MarkRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	updated, err := services.MarkAttendance(database.DB, event.ID, req.Kind, req.IDs, req.Present, time.Now())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToMark)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DownloadAttendance exports the contestant attendance of an event as XLSX
// @Summary Attendance report
// @Tags Attendance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Event ID"
// @Success 200 {file} file
// @Router /organizer/events/{id}/attendance.xlsx [get]
// @Security Bearer
func DownloadAttendance(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	data, err := services.AttendanceWorkbook(database.DB, event.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToReport)
		return
	}
	utils.SendXLSX(c, utils.SanitizeFilename(event.Code)+"-attendance.xlsx", data)
}

// GetEndpoints lists the QR scanner stations of an event
// @Summary List attendance endpoints
// @Tags Attendance
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {array} models.AttendanceEndpoint
// @Router /organizer/events/{id}/attendance/endpoints [get]
// @Security Bearer
func GetEndpoints(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	endpoints := []models.AttendanceEndpoint{}
	if err := database.DB.Where("event_id = ?", event.ID).Order("id").Find(&endpoints).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, endpoints)
}

// CreateEndpoint creates a QR scanner station with a fresh hash and passcode
// @Summary Create an attendance endpoint
// @Tags Attendance
// @Produce json
// @Param id path int true "Event ID"
// @Success 201 {object} models.AttendanceEndpoint
// @Router /organizer/events/{id}/attendance/endpoints [post]
// @Security Bearer
func CreateEndpoint(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	endpoint := models.AttendanceEndpoint{
		EventID:      event.ID,
		EndpointHash: utils.GenerateEndpointHash(),
		Passcode:     utils.GeneratePasscode(6),
	}
	if err := database.DB.Create(&endpoint).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToCreate)
		return
	}
	c.JSON(http.StatusCreated, endpoint)
}

// DeleteEndpoint removes a QR scanner station
// @Summary Delete an attendance endpoint
// @Tags Attendance
// @Param id path int true "Event ID"
// @Param endpointId path int true "Endpoint ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /organizer/events/{id}/attendance/endpoints/{endpointId} [delete]
// @Security Bearer
func DeleteEndpoint(c *gin.Context) {
	eventID, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	endpointID, ok := utils.ParseUintParam(c, "endpointId")
	if !ok {
		return
	}
	result := database.DB.Where("event_id = ?", eventID).Delete(&models.AttendanceEndpoint{}, endpointID)
	if result.Error != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, ErrEndpointNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

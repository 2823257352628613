package judging

import (
	"errors"
	"net/http"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func eventFromPath(c *gin.Context) (*models.Event, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var event models.Event
	if err := database.DB.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrEventNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &event, true
}

// GetJudgeEndpoints lists the judge links of an event
// @Summary List judge endpoints
// @Tags Judging
// @Produce json
// @Param id path int true "Event ID"
// @Param contestId query int false "Contest ID"
// @Success 200 {array} models.JudgeEndpoint
// @Router /organizer/events/{id}/judge-endpoints [get]
// @Security Bearer
func GetJudgeEndpoints(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}

	query := database.DB.Preload("Contest").Where("event_id = ?", event.ID)
	if contestID := utils.QueryUint(c, "contestId"); contestID != nil {
		query = query.Where("contest_id = ?", *contestID)
	}
	endpoints := []models.JudgeEndpoint{}
	if err := query.Order("contest_id, judge_name").Find(&endpoints).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, endpoints)
}

// CreateJudgeEndpoint creates a judge link for a contest of the event
// @Summary Create a judge endpoint
// @Tags Judging
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param endpoint body EndpointRequest true "Endpoint"
// @Success 201 {object} models.JudgeEndpoint
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/events/{id}/judge-endpoints [post]
// @Security Bearer
func CreateJudgeEndpoint(c *gin.Context) {
	event, ok := eventFromPath(c)
	if !ok {
		return
	}
	var req EndpointRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var linked int64
	if err := database.DB.Model(&models.EventContest{}).Where("event_id = ? AND contest_id = ?", event.ID, req.ContestID).Count(&linked).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	if linked == 0 {
		response.Error(c, http.StatusBadRequest, ErrEventContestNotFound)
		return
	}

	endpoint := models.JudgeEndpoint{
		EventID:   event.ID,
		ContestID: req.ContestID,
		JudgeName: req.JudgeName,
		JudgeIC:   utils.NormalizeIC(req.JudgeIC),
		Hashcode:  utils.GenerateEndpointHash(),
	}
	if err := database.DB.Create(&endpoint).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, endpoint)
}

// DeleteJudgeEndpoint revokes a judge link, sessions it started are kept
// @Summary Delete a judge endpoint
// @Tags Judging
// @Param id path int true "Endpoint ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /organizer/judge-endpoints/{id} [delete]
// @Security Bearer
func DeleteJudgeEndpoint(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.JudgingSession{}).Where("judge_endpoint_id = ?", id).Update("judge_endpoint_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.JudgeEndpoint{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrEndpointNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

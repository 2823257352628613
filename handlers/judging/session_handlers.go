package judging

import (
	"errors"
	"net/http"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/models"
	"techlympics/realtime"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// judgeScope resolves the endpoint of the hashcode and the event contest it judges
func judgeScope(c *gin.Context) (*models.JudgeEndpoint, *models.EventContest, bool) {
	var endpoint models.JudgeEndpoint
	result := database.DB.Where("hashcode = ?", c.Param("hashcode")).Limit(1).Find(&endpoint)
	if result.Error != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return nil, nil, false
	}
	if result.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, ErrInvalidJudge)
		return nil, nil, false
	}

	var eventContest models.EventContest
	result = database.DB.Where("event_id = ? AND contest_id = ?", endpoint.EventID, endpoint.ContestID).Limit(1).Find(&eventContest)
	if result.Error != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return nil, nil, false
	}
	if result.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, ErrEventContestNotFound)
		return nil, nil, false
	}
	return &endpoint, &eventContest, true
}

// scopedSession loads a session of the judge's event contest with its scores
func scopedSession(c *gin.Context, eventContestID uint) (*models.JudgingSession, bool) {
	id, ok := utils.ParseUintParam(c, "sessionId")
	if !ok {
		return nil, false
	}
	var session models.JudgingSession
	if err := database.DB.Preload("Scores", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrSessionNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	if session.EventContestID != eventContestID {
		response.Error(c, http.StatusForbidden, ErrSessionOutOfScope)
		return nil, false
	}
	return &session, true
}

// judgingError maps service errors onto a status and message
func judgingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidJudge):
		response.Error(c, http.StatusNotFound, ErrInvalidJudge)
	case errors.Is(err, services.ErrScoreNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrScoreNotInJudgeScope):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrSessionNotInProgress),
		errors.Is(err, services.ErrScoreOutOfRange),
		errors.Is(err, services.ErrNoJudgingTemplate),
		errors.Is(err, services.ErrTeamNotInEventContest):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.Log.WithError(err).Error(fallback)
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}

func broadcast(session *models.JudgingSession, updateType string) {
	realtime.BroadcastScoreUpdate(realtime.ScoreUpdate{
		EventContestID:   session.EventContestID,
		SessionID:        session.ID,
		AttendanceTeamID: session.AttendanceTeamID,
		TotalScore:       session.TotalScore,
		Status:           session.Status,
		UpdateType:       updateType,
	})
}

// GetJudgeView returns the teams a judge can score with their judging status
// @Summary Open a judge link
// @Tags Judging
// @Produce json
// @Param hashcode path string true "Judge hashcode"
// @Success 200 {object} JudgeView
// @Failure 404 {object} map[string]string
// @Router /judge/{hashcode} [get]
func GetJudgeView(c *gin.Context) {
	endpoint, eventContest, ok := judgeScope(c)
	if !ok {
		return
	}

	board, err := services.GetScoreboard(database.DB, endpoint.EventID, endpoint.ContestID, nil)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, JudgeView{
		EndpointID:     endpoint.ID,
		JudgeName:      endpoint.JudgeName,
		EventID:        endpoint.EventID,
		ContestID:      endpoint.ContestID,
		EventContestID: eventContest.ID,
		Teams:          board.Results,
	})
}

// StartSession opens the judging session of a team, or returns the one already open
// @Summary Start judging a team
// @Tags Judging
// @Accept json
// @Produce json
// @Param hashcode path string true "Judge hashcode"
// @Param request body StartSessionRequest true "Attendance team"
// @Success 200 {object} models.JudgingSession
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /judge/{hashcode}/sessions [post]
func StartSession(c *gin.Context) {
	endpoint, eventContest, ok := judgeScope(c)
	if !ok {
		return
	}
	var req StartSessionRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	session, err := services.StartJudgingSession(database.DB, eventContest.ID, req.AttendanceTeamID, nil, &endpoint.ID)
	if err != nil {
		judgingError(c, err, ErrFailedToStartSession)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"session_id":       session.ID,
		"event_contest_id": eventContest.ID,
		"endpoint_id":      endpoint.ID,
	}).Info("judging session started")
	broadcast(session, realtime.UpdateStarted)
	c.JSON(http.StatusOK, session)
}

// GetJudgeSession returns a session of the judge's contest with its scores
// @Summary Get a judging session
// @Tags Judging
// @Produce json
// @Param hashcode path string true "Judge hashcode"
// @Param sessionId path int true "Session ID"
// @Success 200 {object} models.JudgingSession
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /judge/{hashcode}/sessions/{sessionId} [get]
func GetJudgeSession(c *gin.Context) {
	_, eventContest, ok := judgeScope(c)
	if !ok {
		return
	}
	session, ok := scopedSession(c, eventContest.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateScores applies a batch of criterion scores and broadcasts the new totals
// @Summary Update scores
// @Tags Judging
// @Accept json
// @Produce json
// @Param hashcode path string true "Judge hashcode"
// @Param request body ScoresRequest true "Scores"
// @Success 200 {array} models.JudgingSession
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /judge/{hashcode}/scores [put]
func UpdateScores(c *gin.Context) {
	var req ScoresRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	sessionIDs, err := services.UpdateJudgeScores(database.DB, c.Param("hashcode"), req.Scores)
	if err != nil {
		judgingError(c, err, ErrFailedToUpdateScores)
		return
	}

	sessions := []models.JudgingSession{}
	if err := database.DB.Preload("Scores", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("id IN ?", sessionIDs).Order("id").Find(&sessions).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	for i := range sessions {
		broadcast(&sessions[i], realtime.UpdateScore)
	}
	c.JSON(http.StatusOK, sessions)
}

// CompleteSession closes a judging session with its final total
// @Summary Complete a judging session
// @Tags Judging
// @Accept json
// @Produce json
// @Param hashcode path string true "Judge hashcode"
// @Param sessionId path int true "Session ID"
// @Param request body CompleteRequest false "Comments"
// @Success 200 {object} models.JudgingSession
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /judge/{hashcode}/sessions/{sessionId}/complete [post]
func CompleteSession(c *gin.Context) {
	_, eventContest, ok := judgeScope(c)
	if !ok {
		return
	}
	session, ok := scopedSession(c, eventContest.ID)
	if !ok {
		return
	}
	var req CompleteRequest
	if c.Request.ContentLength > 0 && !utils.BindJSON(c, &req) {
		return
	}

	completed, err := services.CompleteJudgingSession(database.DB, session.ID, req.Comments)
	if err != nil {
		judgingError(c, err, ErrFailedToSave)
		return
	}
	broadcast(completed, realtime.UpdateComplete)
	c.JSON(http.StatusOK, completed)
}

// GetEventContestSessions lists the judging sessions of an event contest
// @Summary List judging sessions
// @Tags Judging
// @Produce json
// @Param id path int true "Event contest ID"
// @Success 200 {array} models.JudgingSession
// @Router /organizer/event-contests/{id}/judging-sessions [get]
// @Security Bearer
func GetEventContestSessions(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	sessions := []models.JudgingSession{}
	if err := database.DB.Preload("AttendanceTeam.Team").Where("event_contest_id = ?", id).Order("id").Find(&sessions).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns a judging session with its scores
// @Summary Get a judging session
// @Tags Judging
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} models.JudgingSession
// @Failure 404 {object} map[string]string
// @Router /organizer/judging-sessions/{id} [get]
// @Security Bearer
func GetSession(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var session models.JudgingSession
	err := database.DB.Preload("Scores", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("AttendanceTeam.Team").First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrSessionNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

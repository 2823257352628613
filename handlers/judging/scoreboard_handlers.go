package judging

import (
	"fmt"
	"net/http"

	"techlympics/database"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// scoreboardFromQuery builds the scoreboard of the path event for the contestId and optional stateId query
func scoreboardFromQuery(c *gin.Context) (*services.Scoreboard, bool) {
	event, ok := eventFromPath(c)
	if !ok {
		return nil, false
	}
	contestID := utils.QueryUint(c, "contestId")
	if contestID == nil {
		response.Error(c, http.StatusBadRequest, ErrContestIDRequired)
		return nil, false
	}

	board, err := services.GetScoreboard(database.DB, event.ID, *contestID, utils.QueryUint(c, "stateId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return nil, false
	}
	return board, true
}

// GetScoreboard ranks the teams of a contest at an event
// @Summary Get the scoreboard
// @Tags Judging
// @Produce json
// @Param id path int true "Event ID"
// @Param contestId query int true "Contest ID"
// @Param stateId query int false "State ID"
// @Success 200 {object} services.Scoreboard
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/events/{id}/scoreboard [get]
// @Security Bearer
func GetScoreboard(c *gin.Context) {
	board, ok := scoreboardFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, board)
}

// DownloadScoreboard exports the scoreboard as a spreadsheet
// @Summary Download the scoreboard
// @Tags Judging
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Event ID"
// @Param contestId query int true "Contest ID"
// @Param stateId query int false "State ID"
// @Success 200 {file} file
// @Router /organizer/events/{id}/scoreboard.xlsx [get]
// @Security Bearer
func DownloadScoreboard(c *gin.Context) {
	board, ok := scoreboardFromQuery(c)
	if !ok {
		return
	}
	data, err := services.ScoreboardWorkbook(board)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToBuildWorkbook)
		return
	}
	utils.SendXLSX(c, fmt.Sprintf("scoreboard-%d-%d.xlsx", board.EventID, board.ContestID), data)
}

package judging

import (
	"net/http"
	"time"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/models"
	"techlympics/realtime"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// viewerWriteWait bounds a single scoreboard write to a viewer
const viewerWriteWait = 10 * time.Second

// viewerConn sets a write deadline before every update so a stalled viewer errors out
type viewerConn struct {
	*websocket.Conn
}

func (c viewerConn) WriteJSON(v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(viewerWriteWait)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

// ScoreboardWebSocket streams judging updates of an event contest to a scoreboard viewer
// @Summary Live scoreboard updates
// @Tags Judging
// @Param id path int true "Event contest ID"
// @Success 101
// @Failure 404 {object} map[string]string
// @Router /judging/event-contests/{id}/ws [get]
func ScoreboardWebSocket(c *gin.Context) {
	eventContestID, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var count int64
	if err := database.DB.Model(&models.EventContest{}).Where("id = ?", eventContestID).Count(&count).Error; err != nil || count == 0 {
		response.Error(c, http.StatusNotFound, ErrEventContestNotFound)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	viewer := viewerConn{conn}
	realtime.RegisterClient(eventContestID, viewer)
	defer func() {
		realtime.UnregisterClient(eventContestID, viewer)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).WithField("event_contest_id", eventContestID).Warn("WebSocket read error")
			}
			break
		}
	}
}

package realtime

import (
	"sync"
	"time"

	"techlympics/logger"
	"techlympics/metrics"

	"github.com/shopspring/decimal"
)

// Client is a connected scoreboard viewer; *websocket.Conn satisfies it
type Client interface {
	WriteJSON(v interface{}) error
	Close() error
}

// viewerBuffer is how many updates a viewer may fall behind before it is dropped
const viewerBuffer = 16

// viewer owns the send queue of one client; only its writer goroutine writes to the client
type viewer struct {
	client Client
	send   chan ScoreUpdate
}

var (
	scoreboardClients = make(map[uint]map[Client]*viewer) // Map of event contest ID to connected viewers
	broadcast         = make(chan ScoreUpdate, 64)        // Broadcast channel for updates
	mutex             sync.Mutex                          // Mutex to protect scoreboardClients map
)

const (
	UpdateScore    = "score"
	UpdateStarted  = "started"
	UpdateComplete = "completed"
)

// ScoreUpdate is sent to every viewer of an event contest scoreboard when a judging session changes
type ScoreUpdate struct {
	EventContestID   uint                `json:"event_contest_id"`
	SessionID        uint                `json:"session_id"`
	AttendanceTeamID uint                `json:"attendance_team_id"`
	TotalScore       decimal.NullDecimal `json:"total_score"`
	Status           string              `json:"status"`
	UpdateType       string              `json:"update_type"` // "started", "score" or "completed"
	At               time.Time           `json:"at"`
}

// RegisterClient adds a client to the scoreboard of an event contest
func RegisterClient(eventContestID uint, conn Client) {
	v := &viewer{client: conn, send: make(chan ScoreUpdate, viewerBuffer)}

	mutex.Lock()
	if scoreboardClients[eventContestID] == nil {
		scoreboardClients[eventContestID] = make(map[Client]*viewer)
	}
	if _, exists := scoreboardClients[eventContestID][conn]; exists {
		mutex.Unlock()
		return
	}
	scoreboardClients[eventContestID][conn] = v
	mutex.Unlock()

	metrics.ActiveWebsocketClients.Inc()
	go v.writeLoop(eventContestID)
}

// UnregisterClient removes a client from the scoreboard of an event contest
func UnregisterClient(eventContestID uint, conn Client) {
	mutex.Lock()
	var removed *viewer
	if clients, exists := scoreboardClients[eventContestID]; exists {
		if v, ok := clients[conn]; ok {
			delete(clients, conn)
			removed = v
		}
		if len(clients) == 0 {
			delete(scoreboardClients, eventContestID)
		}
	}
	if removed != nil {
		close(removed.send)
	}
	mutex.Unlock()

	if removed != nil {
		metrics.ActiveWebsocketClients.Dec()
	}
}

// ClientCount returns the number of viewers of an event contest scoreboard
func ClientCount(eventContestID uint) int {
	mutex.Lock()
	defer mutex.Unlock()
	return len(scoreboardClients[eventContestID])
}

// BroadcastScoreUpdate queues an update for all viewers of its event contest without blocking the caller
func BroadcastScoreUpdate(update ScoreUpdate) {
	if update.At.IsZero() {
		update.At = time.Now()
	}
	select {
	case broadcast <- update:
	default:
		logger.Log.WithField("event_contest_id", update.EventContestID).Warn("Scoreboard broadcast queue full, update dropped")
	}
}

func handleBroadcast() {
	for update := range broadcast {
		deliver(update)
	}
}

// deliver hands the update to every viewer queue; viewers whose queue is full are dropped
func deliver(update ScoreUpdate) {
	var lagging []Client

	mutex.Lock()
	for conn, v := range scoreboardClients[update.EventContestID] {
		select {
		case v.send <- update:
		default:
			lagging = append(lagging, conn)
		}
	}
	mutex.Unlock()

	for _, conn := range lagging {
		logger.Log.WithField("event_contest_id", update.EventContestID).Warn("WebSocket viewer too slow, disconnecting")
		conn.Close()
		UnregisterClient(update.EventContestID, conn)
	}
}

func (v *viewer) writeLoop(eventContestID uint) {
	for update := range v.send {
		if err := v.client.WriteJSON(update); err != nil {
			logger.Log.WithError(err).WithField("event_contest_id", eventContestID).Warn("WebSocket write error")
			v.client.Close()
			UnregisterClient(eventContestID, v.client)
			return
		}
	}
}

func init() {
	go handleBroadcast()
}

package judging

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techlympics/database"
	"techlympics/models"
	"techlympics/realtime"
	"techlympics/services"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type judgingSetup struct {
	router         *gin.Engine
	operator       string
	fixture        *testutil.EventFixture
	attendanceTeam models.AttendanceTeam
	template       models.JudgingTemplate
	hashcode       string
}

func setup(t *testing.T) *judgingSetup {
	s := &judgingSetup{router: testutil.NewRouter(t, RegisterRoutes)}
	_, s.operator = testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	s.fixture = testutil.CreateEventFixture(t, database.DB, time.Now())
	_, err := services.SyncEventAttendance(database.DB, s.fixture.Event.ID)
	require.NoError(t, err)
	require.NoError(t, database.DB.Where("team_id = ?", s.fixture.Team.ID).First(&s.attendanceTeam).Error)

	w := testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/judging-templates", TemplateRequest{Name: "Standard", IsDefault: true}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.Decode(t, w, &s.template)

	for _, name := range []string{"Design", "Presentation"} {
		w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("/api/v1/organizer/judging-templates/%d/criteria", s.template.ID), CriterionRequest{Name: name}, s.operator)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("/api/v1/organizer/events/%d/judge-endpoints", s.fixture.Event.ID),
		EndpointRequest{ContestID: s.fixture.Contest.ID, JudgeName: "Dr. Rahman"}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var endpoint models.JudgeEndpoint
	testutil.Decode(t, w, &endpoint)
	s.hashcode = endpoint.Hashcode
	return s
}

func TestCriterionValidation(t *testing.T) {
	s := setup(t)
	path := fmt.Sprintf("/api/v1/organizer/judging-templates/%d/criteria", s.template.ID)

	w := testutil.DoJSON(s.router, http.MethodPost, path, CriterionRequest{Name: "Speed", EvaluationType: models.EvaluationDiscrete}, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPost, path, CriterionRequest{
		Name:           "Speed",
		EvaluationType: models.EvaluationDiscrete,
		DiscreteValues: []byte(`["Slow","Fast"]`),
	}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/judging-templates/%d", s.template.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var template models.JudgingTemplate
	testutil.Decode(t, w, &template)
	require.Len(t, template.Criteria, 3)
	assert.Equal(t, 10, template.Criteria[0].MaxScore)
	assert.Equal(t, 1, template.Criteria[0].Weight)

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("/api/v1/organizer/events/%d/judge-endpoints", s.fixture.Event.ID),
		EndpointRequest{ContestID: 9999, JudgeName: "Nobody"}, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJudgingFlow(t *testing.T) {
	s := setup(t)
	ecID := s.fixture.EventContest.ID

	server := httptest.NewServer(s.router)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + fmt.Sprintf("/api/v1/judging/event-contests/%d/ws", ecID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return realtime.ClientCount(ecID) == 1 }, time.Second, 10*time.Millisecond)

	readUpdate := func() realtime.ScoreUpdate {
		var update realtime.ScoreUpdate
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&update))
		return update
	}

	w := testutil.DoJSON(s.router, http.MethodGet, "/api/v1/judge/"+s.hashcode, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view JudgeView
	testutil.Decode(t, w, &view)
	require.Len(t, view.Teams, 1)
	assert.Equal(t, "NOT_STARTED", view.Teams[0].JudgingStatus)

	w = testutil.DoJSON(s.router, http.MethodPost, "/api/v1/judge/"+s.hashcode+"/sessions", StartSessionRequest{AttendanceTeamID: s.attendanceTeam.ID}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session models.JudgingSession
	testutil.Decode(t, w, &session)
	require.Len(t, session.Scores, 2)
	assert.Equal(t, realtime.UpdateStarted, readUpdate().UpdateType)

	scores := func(a, b int64) ScoresRequest {
		return ScoresRequest{Scores: []services.ScoreUpdate{
			{ScoreID: session.Scores[0].ID, Score: decimal.NewFromInt(a)},
			{ScoreID: session.Scores[1].ID, Score: decimal.NewFromInt(b)},
		}}
	}

	w = testutil.DoJSON(s.router, http.MethodPut, "/api/v1/judge/"+s.hashcode+"/scores", scores(11, 5), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPut, "/api/v1/judge/"+s.hashcode+"/scores", scores(7, 5), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	update := readUpdate()
	assert.Equal(t, realtime.UpdateScore, update.UpdateType)
	require.True(t, update.TotalScore.Valid)
	assert.True(t, decimal.NewFromInt(12).Equal(update.TotalScore.Decimal))

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("/api/v1/judge/%s/sessions/%d/complete", s.hashcode, session.ID), CompleteRequest{Comments: "Kemas"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var completed models.JudgingSession
	testutil.Decode(t, w, &completed)
	assert.Equal(t, models.SessionCompleted, completed.Status)
	assert.Equal(t, realtime.UpdateComplete, readUpdate().UpdateType)

	w = testutil.DoJSON(s.router, http.MethodPut, "/api/v1/judge/"+s.hashcode+"/scores", scores(8, 5), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPut, "/api/v1/judge/unknown/scores", scores(8, 5), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/events/%d/scoreboard?contestId=%d", s.fixture.Event.ID, s.fixture.Contest.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var board services.Scoreboard
	testutil.Decode(t, w, &board)
	require.Len(t, board.Results, 1)
	assert.Equal(t, 1, board.Results[0].Rank)
	assert.Equal(t, 1, board.TotalCompleted)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/events/%d/scoreboard", s.fixture.Event.ID), nil, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/events/%d/scoreboard.xlsx?contestId=%d", s.fixture.Event.ID, s.fixture.Contest.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scoreboard-")

	w = testutil.DoJSON(s.router, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/judging-templates/%d", s.template.ID), nil, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)
}

package teams

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teamFixture struct {
	Router       *gin.Engine
	Token        string
	Contingent   models.Contingent
	Contest      models.Contest
	EventContest models.EventContest
	Contestants  []models.Contestant
}

func setupTeams(t *testing.T) *teamFixture {
	t.Helper()
	f := &teamFixture{Router: testutil.NewRouter(t, RegisterRoutes)}
	owner, token := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)
	f.Token = token

	f.Contingent = models.Contingent{Name: "SMK Putrajaya", ContingentType: models.ContingentTypeSchool}
	require.NoError(t, services.CreateContingent(database.DB, &f.Contingent, owner.ID))

	two := 2
	f.Contest = models.Contest{Code: "ROBO", Name: "Robotik", ParticipationMode: models.ParticipationTeam, MaxMembersPerTeam: &two}
	require.NoError(t, database.DB.Create(&f.Contest).Error)

	event := models.Event{Name: "Techlympics Zon Tengah", Code: "TZT", StartDate: time.Now().Add(24 * time.Hour),
		EndDate: time.Now().Add(32 * time.Hour), Status: models.EventStatusOpen}
	require.NoError(t, database.DB.Create(&event).Error)
	f.EventContest = models.EventContest{EventID: event.ID, ContestID: f.Contest.ID, IsActive: true}
	require.NoError(t, database.DB.Create(&f.EventContest).Error)

	for i, ic := range []string{"100101101111", "100101102222", "100101103333"} {
		contestant, err := services.CreateContestant(database.DB, f.Contingent.ID, services.ContestantInput{
			Name: fmt.Sprintf("Ahli %d", i+1), IC: ic, Gender: "MALE", Age: 15, EduLevel: models.EduLevelSecondary,
		}, nil)
		require.NoError(t, err)
		f.Contestants = append(f.Contestants, *contestant)
	}
	return f
}

func TestTeamLifecycle(t *testing.T) {
	f := setupTeams(t)
	r := f.Router

	w := testutil.DoJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/participants/contingents/%d/teams", f.Contingent.ID),
		TeamRequest{Name: "Pasukan Helang", ContestID: f.Contest.ID}, f.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var team models.Team
	testutil.Decode(t, w, &team)
	assert.NotEmpty(t, team.Hashcode)
	base := fmt.Sprintf("/api/v1/participants/teams/%d", team.ID)

	// Registering an empty team is refused
	w = testutil.DoJSON(r, http.MethodPost, base+"/registrations", RegistrationRequest{EventContestID: f.EventContest.ID}, f.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, contestant := range f.Contestants[:2] {
		w = testutil.DoJSON(r, http.MethodPost, base+"/members", MemberRequest{ContestantID: contestant.ID}, f.Token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// The contest allows two members per team
	w = testutil.DoJSON(r, http.MethodPost, base+"/members", MemberRequest{ContestantID: f.Contestants[2].ID}, f.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(r, http.MethodPost, base+"/members", MemberRequest{ContestantID: f.Contestants[0].ID}, f.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, base+"/registrations", RegistrationRequest{EventContestID: f.EventContest.ID}, f.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registration models.EventContestTeam
	testutil.Decode(t, w, &registration)
	assert.Equal(t, models.RegistrationPending, registration.Status)

	w = testutil.DoJSON(r, http.MethodPost, base+"/registrations", RegistrationRequest{EventContestID: f.EventContest.ID}, f.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, base, nil, f.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded models.Team
	testutil.Decode(t, w, &loaded)
	assert.Len(t, loaded.Members, 2)

	w = testutil.DoJSON(r, http.MethodDelete, base, nil, f.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("%s/members/%d", base, f.Contestants[1].ID), nil, f.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("%s/members/%d", base, f.Contestants[1].ID), nil, f.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamAccessControl(t *testing.T) {
	f := setupTeams(t)
	team := models.Team{Name: "Pasukan Rajawali", ContestID: f.Contest.ID, ContingentID: f.Contingent.ID}
	require.NoError(t, services.CreateTeam(database.DB, &team))

	_, other := testutil.CreateUser(t, "other@example.com", models.RoleParticipant)
	w := testutil.DoJSON(f.Router, http.MethodGet, fmt.Sprintf("/api/v1/participants/teams/%d", team.ID), nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)
	w = testutil.DoJSON(f.Router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/teams/%d", team.ID), nil, viewer)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(f.Router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/teams?contestId=%d", f.Contest.ID), nil, viewer)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.Team `json:"data"`
	}
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 1)
}

func TestCreateTeamUnknownContest(t *testing.T) {
	f := setupTeams(t)
	w := testutil.DoJSON(f.Router, http.MethodPost, fmt.Sprintf("/api/v1/participants/contingents/%d/teams", f.Contingent.ID),
		TeamRequest{Name: "Pasukan X", ContestID: 999}, f.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

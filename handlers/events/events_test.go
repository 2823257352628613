package events

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCrud(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)

	start := time.Date(2026, 11, 20, 8, 0, 0, 0, time.UTC)
	req := EventRequest{Name: "Techlympics Kebangsaan", Code: "tk26", StartDate: start, EndDate: start.Add(10 * time.Hour)}

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/events", req, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	bad := req
	bad.EndDate = start.Add(-time.Hour)
	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/events", bad, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/events", req, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event models.Event
	testutil.Decode(t, w, &event)
	assert.Equal(t, "TK26", event.Code)
	assert.Equal(t, models.EventStatusOpen, event.Status)
	assert.Equal(t, models.ScopeOpen, event.ScopeArea)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/events", req, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/events/%d/status", event.ID),
		StatusRequest{Status: models.EventStatusCutoffRegistration}, operator)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Event
	testutil.Decode(t, w, &updated)
	assert.Equal(t, models.EventStatusCutoffRegistration, updated.Status)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/events", nil, viewer)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/events/%d", event.ID), nil, operator)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEventContestsAndRegistrations(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	start := time.Now().Add(72 * time.Hour)
	event := models.Event{Name: "Zon Utara", Code: "ZU", StartDate: start, EndDate: start.Add(8 * time.Hour),
		Status: models.EventStatusOpen, IsActive: true}
	require.NoError(t, database.DB.Create(&event).Error)
	contest := models.Contest{Code: "DRN", Name: "Dron", ParticipationMode: models.ParticipationTeam}
	require.NoError(t, database.DB.Create(&contest).Error)

	limit := 5
	w := testutil.DoJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/organizer/events/%d/contests", event.ID),
		EventContestRequest{ContestID: contest.ID, MaxParticipants: &limit, PersonInCharge: "En. Razak"}, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var eventContest models.EventContest
	testutil.Decode(t, w, &eventContest)

	w = testutil.DoJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/organizer/events/%d/contests", event.ID),
		EventContestRequest{ContestID: contest.ID}, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/events/%d", event.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var details EventDetails
	testutil.Decode(t, w, &details)
	require.Len(t, details.Contests, 1)
	assert.Equal(t, "Dron", details.Contests[0].Contest.Name)

	contingent := models.Contingent{Name: "SK Alor Setar", ContingentType: models.ContingentTypeSchool}
	require.NoError(t, database.DB.Create(&contingent).Error)
	team := models.Team{Name: "Helang", Hashcode: "TC-H1", ContestID: contest.ID, ContingentID: contingent.ID, MaxMembers: 4}
	require.NoError(t, database.DB.Create(&team).Error)
	registration := models.EventContestTeam{EventContestID: eventContest.ID, TeamID: team.ID, Status: models.RegistrationPending}
	require.NoError(t, database.DB.Create(&registration).Error)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/registrations/%d", registration.ID),
		RegistrationStatusRequest{Status: models.RegistrationApproved}, operator)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/organizer/events/%d/registrations?status=APPROVED", event.ID), nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	var registrations []models.EventContestTeam
	testutil.Decode(t, w, &registrations)
	require.Len(t, registrations, 1)
	assert.Equal(t, "Helang", registrations[0].Team.Name)

	w = testutil.DoJSON(r, http.MethodPut, "/api/v1/organizer/registrations/999",
		RegistrationStatusRequest{Status: models.RegistrationApproved}, operator)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/event-contests/%d", eventContest.ID), nil, operator)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/events/%d", event.ID), nil, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/organizer/events/%d/registrations.xlsx", event.ID), nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ZU-registrations.xlsx")
}

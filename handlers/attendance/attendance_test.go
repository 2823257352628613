package attendance

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInFlow(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	f := testutil.CreateEventFixture(t, database.DB, time.Now().Add(time.Hour))
	eventPath := fmt.Sprintf("/api/v1/organizer/events/%d", f.Event.ID)

	w := testutil.DoJSON(r, http.MethodPost, eventPath+"/attendance/sync", nil, operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var synced services.SyncResult
	testutil.Decode(t, w, &synced)
	assert.Equal(t, 1, synced.Managers)
	assert.Equal(t, 2, synced.Contestants)

	w = testutil.DoJSON(r, http.MethodPost, eventPath+"/attendance/endpoints", nil, operator)
	require.Equal(t, http.StatusCreated, w.Code)
	var endpoint models.AttendanceEndpoint
	testutil.Decode(t, w, &endpoint)
	assert.Len(t, endpoint.Passcode, 6)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/attendance/endpoints/"+endpoint.EndpointHash+"/verify",
		VerifyEndpointRequest{Passcode: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/attendance/endpoints/"+endpoint.EndpointHash+"/verify",
		VerifyEndpointRequest{Passcode: endpoint.Passcode}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var manager models.AttendanceManager
	require.NoError(t, database.DB.Where("event_id = ?", f.Event.ID).First(&manager).Error)
	var contestant models.AttendanceContestant
	require.NoError(t, database.DB.Where("event_id = ?", f.Event.ID).First(&contestant).Error)

	checkIn := func(hashcode string) int {
		w := testutil.DoJSON(r, http.MethodPost, "/api/v1/attendance/check-in", CheckInRequest{
			EventID: f.Event.ID, EndpointHash: endpoint.EndpointHash, Hashcode: hashcode,
		}, "")
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, checkIn(contestant.Hashcode))
	assert.Equal(t, http.StatusNotFound, checkIn("TC25-NOPE00"))
	assert.Equal(t, http.StatusOK, checkIn(manager.Hashcode))
	assert.Equal(t, http.StatusBadRequest, checkIn(manager.Hashcode))

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/attendance/check-in", CheckInRequest{
		EventID: f.Event.ID, EndpointHash: utils.GenerateEndpointHash(), Hashcode: manager.Hashcode,
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, eventPath+"/attendance/stats", nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.AttendanceStatistics
	testutil.Decode(t, w, &stats)
	assert.Equal(t, int64(2), stats.Contestants.Present)
	assert.Equal(t, int64(1), stats.Managers.Present)

	w = testutil.DoJSON(r, http.MethodPut, eventPath+"/attendance/mark",
		MarkRequest{Kind: "contestant", IDs: []uint{contestant.ID}, Present: false}, operator)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, eventPath+"/attendance/contestants?status=Present", nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.AttendanceContestant `json:"data"`
	}
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 1)

	w = testutil.DoJSON(r, http.MethodGet, eventPath+"/attendance.xlsx", nil, operator)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckInOutsideWindow(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	f := testutil.CreateEventFixture(t, database.DB, time.Now().Add(48*time.Hour))
	_, err := services.SyncEventAttendance(database.DB, f.Event.ID)
	require.NoError(t, err)

	endpoint := models.AttendanceEndpoint{EventID: f.Event.ID, EndpointHash: utils.GenerateEndpointHash(), Passcode: "123456"}
	require.NoError(t, database.DB.Create(&endpoint).Error)
	var manager models.AttendanceManager
	require.NoError(t, database.DB.Where("event_id = ?", f.Event.ID).First(&manager).Error)

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/attendance/check-in", CheckInRequest{
		EventID: f.Event.ID, EndpointHash: endpoint.EndpointHash, Hashcode: manager.Hashcode,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "attendance not available")
}

func TestManagerCodes(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	f := testutil.CreateEventFixture(t, database.DB, time.Now().Add(time.Hour))
	_, err := services.SyncEventAttendance(database.DB, f.Event.ID)
	require.NoError(t, err)

	token, err := utils.GenerateToken(f.Manager)
	require.NoError(t, err)
	w := testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/participants/events/%d/attendance", f.Event.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.AttendanceManager
	testutil.Decode(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, f.Contingent.ID, rows[0].ContingentID)
}

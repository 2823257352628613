package contests

import (
	"fmt"
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestCrudAndEligibility(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)

	primary := models.TargetGroup{Code: "PRI", Name: "Sekolah Rendah", SchoolLevel: models.EduLevelPrimary, MinAge: 7, MaxAge: 12}
	secondary := models.TargetGroup{Code: "SEC", Name: "Sekolah Menengah", SchoolLevel: models.EduLevelSecondary, MinAge: 13, MaxAge: 17}
	require.NoError(t, database.DB.Create(&primary).Error)
	require.NoError(t, database.DB.Create(&secondary).Error)

	req := ContestRequest{Code: "scratch", Name: "Scratch Coding", TargetGroupIDs: []uint{primary.ID}}
	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/contests", req, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/contests", req, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var scratch models.Contest
	testutil.Decode(t, w, &scratch)
	assert.Equal(t, "SCRATCH", scratch.Code)
	assert.Equal(t, models.ParticipationIndividual, scratch.ParticipationMode)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/contests", req, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/contests",
		ContestRequest{Code: "IOT", Name: "IoT Challenge", ParticipationMode: models.ParticipationTeam, TargetGroupIDs: []uint{secondary.ID}}, operator)
	require.Equal(t, http.StatusCreated, w.Code)

	var list []models.Contest
	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/contests?age=10&eduLevel=sekolah%20rendah", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Scratch Coding", list[0].Name)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/contests", nil, "")
	testutil.Decode(t, w, &list)
	assert.Len(t, list, 2)

	req.TargetGroupIDs = []uint{primary.ID, secondary.ID}
	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/contests/%d", scratch.ID), req, operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Contest
	testutil.Decode(t, w, &updated)
	assert.Len(t, updated.TargetGroups, 2)

	require.NoError(t, database.DB.Create(&models.Team{Name: "T", Hashcode: "TC-T1", ContestID: scratch.ID, ContingentID: 1}).Error)
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/contests/%d", scratch.ID), nil, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/contests/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

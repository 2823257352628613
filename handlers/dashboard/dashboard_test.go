package dashboard

import (
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

func TestOrganizerDashboard(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)
	testutil.CreateEventFixture(t, database.DB, time.Now())

	w := testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/dashboard", nil, viewer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.DashboardStats
	testutil.Decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.Contingents)
	assert.Equal(t, int64(2), stats.Contestants)
	assert.Equal(t, int64(1), stats.Teams)
	require.Len(t, stats.ContestantsByEduLevel, 1)
	assert.Equal(t, models.EduLevelPrimary, stats.ContestantsByEduLevel[0].Label)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/dashboard/refresh", nil, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParticipantDashboard(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	f := testutil.CreateEventFixture(t, database.DB, time.Now())
	token, err := utils.GenerateToken(f.Manager)
	require.NoError(t, err)

	w := testutil.DoJSON(r, http.MethodGet, "/api/v1/participants/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.ParticipantStats
	testutil.Decode(t, w, &stats)
	require.Len(t, stats.Contingents, 1)
	assert.Equal(t, f.Contingent.ID, stats.Contingents[0].ID)
	assert.Equal(t, int64(2), stats.Contestants)
	assert.Equal(t, int64(1), stats.Teams)
	assert.Equal(t, int64(1), stats.Registrations)

	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/participants/dashboard", nil, operator)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

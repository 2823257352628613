package contingents

import (
	"fmt"
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	return testutil.NewRouter(t, RegisterRoutes)
}

func TestCreateAndListContingents(t *testing.T) {
	r := setupRouter(t)
	_, token := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/participants/contingents", ContingentRequest{
		Name: "SK Taman Melawati", ContingentType: models.ContingentTypeSchool,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Contingent
	testutil.Decode(t, w, &created)
	assert.NotZero(t, created.ID)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/participants/contingents", ContingentRequest{
		Name: "sk taman melawati", ContingentType: models.ContingentTypeSchool,
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/participants/contingents", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Contingent
	testutil.Decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
}

func TestCreateContingentValidation(t *testing.T) {
	r := setupRouter(t)
	_, token := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/participants/contingents", ContingentRequest{
		Name: "Kontinjen", ContingentType: "CLUB",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "contingent_type")
}

func TestContingentRequestFlow(t *testing.T) {
	r := setupRouter(t)
	owner, ownerToken := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)
	helper, helperToken := testutil.CreateUser(t, "helper@example.com", models.RoleParticipant)

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/participants/contingents", ContingentRequest{
		Name: "SMK Seri Bintang", ContingentType: models.ContingentTypeSchool,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var contingent models.Contingent
	testutil.Decode(t, w, &contingent)
	base := fmt.Sprintf("/api/v1/participants/contingents/%d", contingent.ID)

	// The helper cannot manage the contingent yet
	w = testutil.DoJSON(r, http.MethodGet, base+"/managers", nil, helperToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, base+"/requests", nil, helperToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var request models.ContingentRequest
	testutil.Decode(t, w, &request)

	w = testutil.DoJSON(r, http.MethodPost, base+"/requests", nil, helperToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, base+"/requests", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.ContingentRequest
	testutil.Decode(t, w, &pending)
	assert.Len(t, pending, 1)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("%s/requests/%d", base, request.ID), ReviewRequest{Approve: true}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoJSON(r, http.MethodGet, base+"/managers", nil, helperToken)
	require.Equal(t, http.StatusOK, w.Code)
	var managers []models.ContingentManager
	testutil.Decode(t, w, &managers)
	assert.Len(t, managers, 2)

	// The owner stays; the helper can be removed
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("%s/managers/%d", base, owner.ID), nil, helperToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("%s/managers/%d", base, helper.ID), nil, ownerToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOrganizerContingents(t *testing.T) {
	r := setupRouter(t)
	_, participantToken := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)
	_, viewerToken := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)
	_, operatorToken := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	for _, name := range []string{"Kontinjen A", "Kontinjen B", "Kontinjen C"} {
		w := testutil.DoJSON(r, http.MethodPost, "/api/v1/participants/contingents", ContingentRequest{
			Name: name, ContingentType: models.ContingentTypeIndependent,
		}, participantToken)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/contingents", nil, participantToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/contingents?pageSize=2", nil, viewerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data       []models.Contingent `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
			Pages int   `json:"totalPages"`
		} `json:"pagination"`
	}
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)

	first := page.Data[0]
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/contingents/%d", first.ID), nil, viewerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/contingents/%d", first.ID), nil, operatorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var managers int64
	database.DB.Model(&models.ContingentManager{}).Where("contingent_id = ?", first.ID).Count(&managers)
	assert.Zero(t, managers)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/contingents/report.xlsx", nil, viewerToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "contingents.xlsx")
}

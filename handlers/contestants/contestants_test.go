package contestants

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupContingent(t *testing.T) (*gin.Engine, models.Contingent, string) {
	t.Helper()
	r := testutil.NewRouter(t, RegisterRoutes)
	owner, token := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)
	contingent := models.Contingent{Name: "SK Bukit Indah", ContingentType: models.ContingentTypeSchool}
	require.NoError(t, services.CreateContingent(database.DB, &contingent, owner.ID))
	return r, contingent, token
}

func validInput(ic string) services.ContestantInput {
	return services.ContestantInput{
		Name: "Nur Aisyah", IC: ic, Gender: "FEMALE", Age: 11, EduLevel: models.EduLevelPrimary,
	}
}

func TestCreateContestant(t *testing.T) {
	r, contingent, token := setupContingent(t)
	path := fmt.Sprintf("/api/v1/participants/contingents/%d/contestants", contingent.ID)

	w := testutil.DoJSON(r, http.MethodPost, path, validInput("140101-10-1234"), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Contestant
	testutil.Decode(t, w, &created)
	assert.Equal(t, "140101101234", created.IC)
	assert.NotEmpty(t, created.Hashcode)

	t.Run("duplicate IC", func(t *testing.T) {
		w := testutil.DoJSON(r, http.MethodPost, path, validInput("140101101234"), token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid fields", func(t *testing.T) {
		input := validInput("1234")
		input.EduLevel = "universiti"
		w := testutil.DoJSON(r, http.MethodPost, path, input, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ic")
		assert.Contains(t, w.Body.String(), "edu_level")
	})

	t.Run("other participant", func(t *testing.T) {
		_, other := testutil.CreateUser(t, "other@example.com", models.RoleParticipant)
		w := testutil.DoJSON(r, http.MethodGet, path, nil, other)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	w = testutil.DoJSON(r, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Contestant
	testutil.Decode(t, w, &list)
	assert.Len(t, list, 1)
}

func TestUpdateAndDeleteContestant(t *testing.T) {
	r, contingent, token := setupContingent(t)
	contestant, err := services.CreateContestant(database.DB, contingent.ID, validInput("140101101234"), nil)
	require.NoError(t, err)
	path := fmt.Sprintf("/api/v1/participants/contestants/%d", contestant.ID)

	input := validInput("140101101234")
	input.Name = "Nur Aisyah Binti Ahmad"
	input.ClassName = "5 Cemerlang"
	w := testutil.DoJSON(r, http.MethodPut, path, input, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Contestant
	testutil.Decode(t, w, &updated)
	assert.Equal(t, "Nur Aisyah Binti Ahmad", updated.Name)
	assert.Equal(t, contestant.Hashcode, updated.Hashcode)

	team := models.Team{Name: "Pasukan A", ContestID: 1, ContingentID: contingent.ID}
	require.NoError(t, services.CreateTeam(database.DB, &team))
	require.NoError(t, database.DB.Create(&models.TeamMember{TeamID: team.ID, ContestantID: contestant.ID, Role: "MEMBER"}).Error)

	w = testutil.DoJSON(r, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, database.DB.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error)
	w = testutil.DoJSON(r, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestImportContestants(t *testing.T) {
	r, contingent, token := setupContingent(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Nama", "No IC", "Jantina", "Umur", "Tahap Pendidikan"},
		{"Ali", "090909101111", "MALE", 12, "sekolah rendah"},
		{"Siti", "12345", "FEMALE", 12, "sekolah rendah"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)
	f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "contestants.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	path := fmt.Sprintf("/api/v1/participants/contingents/%d/contestants/import", contingent.ID)
	w := testutil.Do(r, http.MethodPost, path, &body, writer.FormDataContentType(), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.ImportResult
	testutil.Decode(t, w, &result)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestOrganizerContestantList(t *testing.T) {
	r, contingent, _ := setupContingent(t)
	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)
	_, err := services.CreateContestant(database.DB, contingent.ID, validInput("140101101234"), nil)
	require.NoError(t, err)
	other := validInput("130202102222")
	other.Name = "Muhammad Hakim"
	other.Gender = "MALE"
	other.EduLevel = models.EduLevelSecondary
	_, err = services.CreateContestant(database.DB, contingent.ID, other, nil)
	require.NoError(t, err)

	w := testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/contestants?eduLevel=sekolah%20menengah", nil, viewer)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.Contestant `json:"data"`
	}
	testutil.Decode(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Muhammad Hakim", page.Data[0].Name)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/contestants?search=hakim", nil, viewer)
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 1)
}

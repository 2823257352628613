package reference

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSchoolImportAndSearch(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	zone := models.Zone{Name: "Tengah"}
	require.NoError(t, database.DB.Create(&zone).Error)
	selangor := models.State{Name: "Selangor", ZoneID: &zone.ID}
	require.NoError(t, database.DB.Create(&selangor).Error)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Kod Sekolah", "Nama Sekolah", "Negeri"},
		{"BBA1234", "SK Seksyen 7", "selangor"},
		{"BEA5678", "SMK Bandar Utama", "Selangor"},
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
	part, err := writer.CreateFormFile("file", "schools.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := testutil.Do(r, http.MethodPost, "/api/v1/organizer/reference/schools/import", &body, writer.FormDataContentType(), operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/reference/schools?search=smk&stateId=%d", selangor.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.School `json:"data"`
	}
	testutil.Decode(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "BEA5678", page.Data[0].Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/reference/zones", nil, "")
	var zones []models.Zone
	testutil.Decode(t, w, &zones)
	require.Len(t, zones, 1)
	assert.Len(t, zones[0].States, 1)
}

func TestTargetGroupCrud(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/reference/target-groups",
		TargetGroupRequest{Code: "sr1", Name: "Sekolah Rendah 1", SchoolLevel: "Sekolah Rendah", MinAge: 10, MaxAge: 7}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/reference/target-groups",
		TargetGroupRequest{Code: "sr1", Name: "Sekolah Rendah 1", SchoolLevel: "sekolah rendah", MinAge: 7, MaxAge: 9}, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var group models.TargetGroup
	testutil.Decode(t, w, &group)
	assert.Equal(t, "SR1", group.Code)

	contest := models.Contest{Code: "C1", Name: "Contest", TargetGroups: []models.TargetGroup{group}}
	require.NoError(t, database.DB.Create(&contest).Error)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/reference/target-groups/%d", group.ID), nil, operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/reference/target-groups", nil, "")
	var groups []models.TargetGroup
	testutil.Decode(t, w, &groups)
	assert.Len(t, groups, 1)
}

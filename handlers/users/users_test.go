package users

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type userPage struct {
	Data       []models.User    `json:"data"`
	Pagination utils.Pagination `json:"pagination"`
}

func TestCreateAndListUsers(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, admin := testutil.CreateUser(t, "admin@example.com", models.RoleAdmin)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	req := CreateUserRequest{Name: "Judge One", Username: "judge1", Email: "Judge1@Example.com", Role: models.RoleJudge}
	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/users", req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.User
	testutil.Decode(t, w, &created)
	assert.Equal(t, "judge1@example.com", created.Email)
	assert.True(t, created.IsActive)

	var stored models.User
	require.NoError(t, database.DB.First(&stored, created.ID).Error)
	assert.True(t, utils.CheckPasswordHash(database.DefaultPassword, stored.Password))

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/users", req, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	req.Role = "SUPERUSER"
	req.Email = "other@example.com"
	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/users", req, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/users", nil, operator)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/users?role=JUDGE", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var page userPage
	testutil.Decode(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)
	assert.Equal(t, int64(1), page.Pagination.Total)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/users?search=OPERATOR@", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 1)
}

func TestUpdateUserAndRole(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	adminUser, admin := testutil.CreateUser(t, "admin@example.com", models.RoleAdmin)
	viewer, _ := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)

	w := testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/users/%d", viewer.ID), UpdateUserRequest{Name: "Renamed", Email: "admin@example.com"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/users/%d", viewer.ID), UpdateUserRequest{Name: "Renamed"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.User
	testutil.Decode(t, w, &updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "viewer@example.com", updated.Email)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/users/%d/role", viewer.ID), RoleRequest{Role: models.RoleOperator}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &updated)
	assert.Equal(t, models.RoleOperator, updated.Role)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/users/%d/role", adminUser.ID), RoleRequest{Role: models.RoleViewer}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/users/roles", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var roles []roleCount
	testutil.Decode(t, w, &roles)
	require.Len(t, roles, len(allRoles))
	counts := map[string]int64{}
	for _, rc := range roles {
		counts[rc.Role] = rc.Count
	}
	assert.Equal(t, int64(1), counts[models.RoleAdmin])
	assert.Equal(t, int64(1), counts[models.RoleOperator])
	assert.Equal(t, int64(0), counts[models.RoleViewer])
}

func TestToggleBlockAndDeleteUser(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	adminUser, admin := testutil.CreateUser(t, "admin@example.com", models.RoleAdmin)
	participant, participantToken := testutil.CreateUser(t, "manager@example.com", models.RoleParticipant)
	owner, _ := testutil.CreateUser(t, "owner@example.com", models.RoleParticipant)
	require.NoError(t, services.CreateContingent(database.DB, &models.Contingent{Name: "SK Bukit"}, owner.ID))

	w := testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/users/%d/block", participant.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled models.User
	testutil.Decode(t, w, &toggled)
	assert.False(t, toggled.IsActive)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/profile", nil, participantToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/organizer/users/%d/block", adminUser.ID), nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/users/%d", owner.ID), nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/users/%d", participant.ID), nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/users/%d", participant.ID), nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, "/api/v1/organizer/users", BulkDeleteRequest{IDs: []uint{adminUser.ID}}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileAndPassword(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	user, token := testutil.CreateUser(t, "manager@example.com", models.RoleParticipant)
	testutil.CreateUser(t, "taken@example.com", models.RoleParticipant)

	w := testutil.DoJSON(r, http.MethodGet, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(r, http.MethodPut, "/api/v1/profile", ProfileUpdate{Email: "taken@example.com"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(r, http.MethodPut, "/api/v1/profile", ProfileUpdate{Name: "Cikgu Aminah", Phone: "0123456789"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.User
	testutil.Decode(t, w, &profile)
	assert.Equal(t, "Cikgu Aminah", profile.Name)
	assert.Equal(t, "0123456789", profile.Phone)

	w = testutil.DoJSON(r, http.MethodPut, "/api/v1/profile/password", PasswordUpdate{OldPassword: "wrong-password", NewPassword: "newpassword1"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodPut, "/api/v1/profile/password", PasswordUpdate{OldPassword: "password123", NewPassword: "newpassword1"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, database.DB.First(&stored, user.ID).Error)
	assert.True(t, utils.CheckPasswordHash("newpassword1", stored.Password))
}

func TestImportUsersFromXLSX(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, admin := testutil.CreateUser(t, "admin@example.com", models.RoleAdmin)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Name", "Email", "Role", "Username"},
		{"Hakim", "hakim@example.com", "judge", "hakim"},
		{"Salmah", "salmah@example.com", "KING", ""},
		{"Admin Again", "admin@example.com", "ADMIN", ""},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &values))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "users.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := testutil.Do(r, http.MethodPost, "/api/v1/organizer/users/import", &body, writer.FormDataContentType(), admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result ImportResult
	testutil.Decode(t, w, &result)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 1)

	var judge models.User
	require.NoError(t, database.DB.Where("email = ?", "hakim@example.com").First(&judge).Error)
	assert.Equal(t, models.RoleJudge, judge.Role)
	require.NotNil(t, judge.Username)
	assert.Equal(t, "hakim", *judge.Username)
}

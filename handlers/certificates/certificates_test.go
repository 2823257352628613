package certificates

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"techlympics/config"
	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layout = `{"elements":[{"id":"1","type":"dynamic_text","placeholder":"{{recipient_name}}","position":{"x":421,"y":250},"style":{"align":"center","font_size":24}}]}`

func setup(t *testing.T) (*gin.Engine, string) {
	r := testutil.NewRouter(t, RegisterRoutes)
	config.UploadsDir = t.TempDir()
	config.PublicDir = t.TempDir()
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	return r, operator
}

func createTemplate(t *testing.T, r *gin.Engine, token string) models.CertTemplate {
	req := TemplateRequest{TemplateName: "Penyertaan", Configuration: json.RawMessage(layout), TargetType: models.TargetGeneral}
	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificate-templates", req, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var template models.CertTemplate
	testutil.Decode(t, w, &template)
	return template
}

func TestTemplateLifecycle(t *testing.T) {
	r, operator := setup(t)
	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)

	template := createTemplate(t, r, operator)
	assert.Equal(t, models.TemplateStatusActive, template.Status)
	assert.Contains(t, string(template.Configuration), `"text_anchor":"middle"`)
	assert.Contains(t, string(template.Configuration), `"prefix":""`)

	start, end := 5, 1
	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificate-templates",
		TemplateRequest{TemplateName: "Pemenang", WinnerRangeStart: &start, WinnerRangeEnd: &end}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificate-templates",
		TemplateRequest{TemplateName: "Luar", BasePdfPath: "/uploads/../../etc/passwd"}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrInvalidBasePdfPath)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificate-templates", TemplateRequest{TemplateName: "X"}, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/organizer/certificate-templates/%d/duplicate", template.ID), nil, operator)
	require.Equal(t, http.StatusCreated, w.Code)
	var copied models.CertTemplate
	testutil.Decode(t, w, &copied)
	assert.Equal(t, "Penyertaan (Copy)", copied.TemplateName)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/certificate-templates/%d", template.ID), nil, operator)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/certificate-templates?status=ACTIVE", nil, viewer)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.CertTemplate `json:"data"`
	}
	testutil.Decode(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, copied.ID, page.Data[0].ID)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificates/generate", GenerateRequest{
		TemplateID: template.ID,
		Recipients: []services.CertificateInput{{RecipientName: "Ali"}},
	}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateAndVerifyCertificates(t *testing.T) {
	r, operator := setup(t)
	template := createTemplate(t, r, operator)

	w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificates/generate", GenerateRequest{
		TemplateID: template.ID,
		Recipients: []services.CertificateInput{{RecipientName: "Ali bin Abu"}, {RecipientName: "Siti Aminah", ContestName: "Robotik"}},
	}, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.BulkIssueResult
	testutil.Decode(t, w, &result)
	require.Len(t, result.Issued, 2)
	assert.Empty(t, result.Failed)

	w = testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/organizer/certificate-templates/%d/serials/preview", template.ID), nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	var preview map[string]string
	testutil.Decode(t, w, &preview)
	assert.True(t, strings.HasSuffix(preview["serialNumber"], "/000003"), preview["serialNumber"])

	siti := result.Issued[1]
	require.NotNil(t, siti.SerialNumber)
	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/certificates/verify?serial="+url.QueryEscape(*siti.SerialNumber), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verified VerificationResponse
	testutil.Decode(t, w, &verified)
	assert.True(t, verified.Valid)
	assert.Equal(t, "Siti Aminah", verified.RecipientName)
	assert.Equal(t, "Robotik", verified.ContestName)
	assert.Equal(t, "Penyertaan", verified.TemplateName)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/certificates/verify?code="+result.Issued[0].UniqueCode, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/certificates/verify?serial=bogus", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/certificates/verify?code=missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/certificates/verify", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No base PDF means nothing can be rendered
	w = testutil.DoJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/organizer/certificates/%d/download", siti.ID), nil, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificates/download", DownloadRequest{IDs: []uint{siti.ID}}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/certificate-serials/stats", nil, operator)
	require.Equal(t, http.StatusOK, w.Code)
	var stats []services.SerialStat
	testutil.Decode(t, w, &stats)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].CertificatesIssued)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/certificates/%d", siti.ID), nil, operator)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoJSON(r, http.MethodGet, "/api/v1/certificates/verify?serial="+url.QueryEscape(*siti.SerialNumber), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateForEventWinners(t *testing.T) {
	r, operator := setup(t)
	f := testutil.CreateEventFixture(t, database.DB, time.Now())
	_, err := services.SyncEventAttendance(database.DB, f.Event.ID)
	require.NoError(t, err)
	var team models.AttendanceTeam
	require.NoError(t, database.DB.Where("event_id = ? AND team_id = ?", f.Event.ID, f.Team.ID).First(&team).Error)
	require.NoError(t, database.DB.Create(&models.JudgingTemplate{
		Name:      "Rubric",
		IsDefault: true,
		Criteria:  []models.JudgingTemplateCriterion{{Name: "Design", Weight: 1, MaxScore: 10, EvaluationType: models.EvaluationPoints}},
	}).Error)
	session, err := services.StartJudgingSession(database.DB, f.EventContest.ID, team.ID, nil, nil)
	require.NoError(t, err)
	_, err = services.CompleteJudgingSession(database.DB, session.ID, "")
	require.NoError(t, err)

	general := createTemplate(t, r, operator)
	w := testutil.DoJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/organizer/certificate-templates/%d/generate-winners", general.ID), nil, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := TemplateRequest{
		TemplateName:  "Pemenang",
		Configuration: json.RawMessage(layout),
		TargetType:    models.TargetEventWinner,
		EventID:       &f.Event.ID,
	}
	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/certificate-templates", req, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var winners models.CertTemplate
	testutil.Decode(t, w, &winners)

	path := fmt.Sprintf("/api/v1/organizer/certificate-templates/%d/generate-winners", winners.ID)
	_, viewer := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)
	w = testutil.DoJSON(r, http.MethodPost, path, nil, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(r, http.MethodPost, path, nil, operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.BulkIssueResult
	testutil.Decode(t, w, &result)
	require.Len(t, result.Issued, 2)
	assert.Equal(t, "TEMPAT PERTAMA", result.Issued[0].AwardTitle)
	assert.Equal(t, f.Team.Name, result.Issued[0].TeamName)

	w = testutil.DoJSON(r, http.MethodPost, path, nil, operator)
	require.Equal(t, http.StatusCreated, w.Code)
	testutil.Decode(t, w, &result)
	assert.Empty(t, result.Issued)
	assert.Len(t, result.Updated, 2)
}

package email

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
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

type fakeMailer struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]bool
}

func (m *fakeMailer) Send(to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return "", errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, to+"|"+subject)
	return fmt.Sprintf("<%d@test>", len(m.sent)), nil
}

type emailSetup struct {
	router   *gin.Engine
	operator string
	mailer   *fakeMailer
}

func setup(t *testing.T) *emailSetup {
	s := &emailSetup{
		router: testutil.NewRouter(t, RegisterRoutes),
		mailer: &fakeMailer{failTo: map[string]bool{"bad@example.com": true}},
	}
	_, s.operator = testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	previous := newEmailService
	newEmailService = func() *services.EmailService { return services.NewEmailServiceWith(database.DB, s.mailer) }
	t.Cleanup(func() { newEmailService = previous })
	return s
}

func (s *emailSetup) createCampaign(t *testing.T) (models.EmailTemplate, models.EmailCampaign) {
	t.Helper()
	w := testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/email-templates", TemplateRequest{
		TemplateName: "Invite",
		Subject:      "Hello {{name}}",
		Content:      "<html><body>Team {{team}}</body></html>",
	}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var template models.EmailTemplate
	testutil.Decode(t, w, &template)
	assert.Equal(t, "SMTP", template.DeliveryMethod)

	w = testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/email-campaigns", CampaignRequest{CampaignName: "Invites", TemplateID: template.ID}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var campaign models.EmailCampaign
	testutil.Decode(t, w, &campaign)
	assert.Equal(t, models.CampaignDraft, campaign.Status)
	return template, campaign
}

func recipientWorkbook(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Email", "Name", "Team"},
		{"siti@example.com", "Siti", "Alpha"},
		{"ali@example.com", "Ali", "Beta"},
		{"", "Nobody", "Gamma"},
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &r))
	}
	data, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "recipients.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCampaignFlow(t *testing.T) {
	s := setup(t)
	template, campaign := s.createCampaign(t)
	base := fmt.Sprintf("/api/v1/organizer/email-campaigns/%d", campaign.ID)

	w := testutil.DoJSON(s.router, http.MethodPost, base+"/recipients", RecipientsRequest{Recipients: []RecipientInput{
		{Email: "Ali@example.com", Name: "Ali", Placeholders: map[string]string{"team": "Beta"}},
		{Email: "bad@example.com", Name: "Bad"},
	}}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added AddRecipientsResult
	testutil.Decode(t, w, &added)
	assert.Equal(t, 2, added.Added)

	body, contentType := recipientWorkbook(t)
	w = testutil.Do(s.router, http.MethodPost, base+"/recipients/import", body, contentType, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.Decode(t, w, &added)
	assert.Equal(t, 1, added.Added)
	assert.Equal(t, 1, added.Skipped)
	assert.Equal(t, 3, added.TotalRecipients)

	w = testutil.DoJSON(s.router, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/email-templates/%d", template.ID), nil, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPost, base+"/send?batchSize=2", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var batch services.BatchResult
	testutil.Decode(t, w, &batch)
	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, 1, batch.Sent)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, int64(1), batch.Remaining)

	w = testutil.DoJSON(s.router, http.MethodPut, base, CampaignRequest{CampaignName: "Renamed", TemplateID: template.ID}, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = testutil.DoJSON(s.router, http.MethodDelete, base, nil, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPost, base+"/send", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoJSON(s.router, http.MethodPost, base+"/send", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &batch)
	assert.True(t, batch.Completed)

	w = testutil.DoJSON(s.router, http.MethodPost, base+"/send", nil, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Contains(t, s.mailer.sent, "siti@example.com|Hello Siti")

	var outgoing models.EmailOutgoing
	require.NoError(t, database.DB.Where("recipient_email = ?", "ali@example.com").First(&outgoing).Error)
	assert.Equal(t, models.DeliverySent, outgoing.DeliveryStatus)

	for i := 0; i < 2; i++ {
		w = testutil.DoJSON(s.router, http.MethodGet, "/api/v1/email/track/"+outgoing.TrackingID+".gif", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	}
	require.NoError(t, database.DB.First(&outgoing, outgoing.ID).Error)
	assert.Equal(t, 2, outgoing.OpenCount)
	assert.NotNil(t, outgoing.OpenedAt)

	w = testutil.DoJSON(s.router, http.MethodGet, "/api/v1/email/track/unknown.gif", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(s.router, http.MethodGet, base, nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var detail CampaignDetail
	testutil.Decode(t, w, &detail)
	assert.Equal(t, models.CampaignCompleted, detail.Status)
	assert.Equal(t, int64(2), detail.Stats.Sent)
	assert.Equal(t, int64(1), detail.Stats.Failed)
	assert.Equal(t, int64(1), detail.Stats.Opened)

	w = testutil.DoJSON(s.router, http.MethodPost, base+"/retry-failed", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var campaignAfter models.EmailCampaign
	require.NoError(t, database.DB.First(&campaignAfter, campaign.ID).Error)
	assert.Equal(t, models.CampaignInProgress, campaignAfter.Status)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/email-outgoing?campaignId=%d", campaign.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.EmailOutgoing `json:"data"`
	}
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 3)
}

func TestSendTestEmail(t *testing.T) {
	s := setup(t)
	template, _ := s.createCampaign(t)
	path := fmt.Sprintf("/api/v1/organizer/email-templates/%d/test", template.ID)

	w := testutil.DoJSON(s.router, http.MethodPost, path, TestEmailRequest{Email: "guru@example.com", Placeholders: map[string]string{"name": "Cikgu"}}, s.operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outgoing models.EmailOutgoing
	testutil.Decode(t, w, &outgoing)
	assert.Equal(t, "Hello Cikgu", outgoing.Subject)
	assert.Equal(t, models.DeliverySent, outgoing.DeliveryStatus)

	w = testutil.DoJSON(s.router, http.MethodPost, path, TestEmailRequest{Email: "bad@example.com"}, s.operator)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	newEmailService = func() *services.EmailService { return services.NewEmailService(database.DB) }
	w = testutil.DoJSON(s.router, http.MethodPost, path, TestEmailRequest{Email: "guru@example.com"}, s.operator)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPost, path, TestEmailRequest{Email: "not-an-email"}, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"techlympics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func (m *fakeMailer) Send(to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return "", errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return fmt.Sprintf("<%d@test>", len(m.sent)), nil
}

func TestRenderPlaceholders(t *testing.T) {
	out := RenderPlaceholders("Hi {{name}}, code {{ code }} {{missing}}!", map[string]string{"name": "Ali", "code": "X1"})
	assert.Equal(t, "Hi Ali, code X1 !", out)
}

func TestInjectTrackingPixel(t *testing.T) {
	withBody := InjectTrackingPixel("<html><body><p>x</p></BODY></html>", "1-2-3")
	assert.Contains(t, withBody, `/email/track/1-2-3.gif`)
	assert.True(t, strings.Index(withBody, "<img") < strings.Index(withBody, "</BODY>"))

	plain := InjectTrackingPixel("<p>x</p>", "abc")
	assert.True(t, strings.HasPrefix(plain, "<p>x</p><img"))
}

func TestBuildMessageHeaders(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("line breaks cannot add headers", func(t *testing.T) {
		rcpt, msg, err := buildMessage("noreply@techlympics.my", "ali@example.com", "Hello Ali\r\nBcc: attacker@evil.test", "<1@test>", "<p>x</p>", now)
		require.NoError(t, err)
		assert.Equal(t, "ali@example.com", rcpt)

		head := strings.SplitN(string(msg), "\r\n\r\n", 2)[0]
		for _, line := range strings.Split(head, "\r\n") {
			assert.False(t, strings.HasPrefix(line, "Bcc:"), line)
		}
		assert.Contains(t, head, "Subject: Hello Ali Bcc: attacker@evil.test")
		assert.NotContains(t, head, "\n\n")
	})

	t.Run("non-ascii subject is encoded", func(t *testing.T) {
		_, msg, err := buildMessage("noreply@techlympics.my", "Siti <siti@example.com>", "Sijil – Tahniah", "<2@test>", "", now)
		require.NoError(t, err)
		assert.Contains(t, string(msg), "Subject: =?UTF-8?q?")
		assert.Contains(t, string(msg), "To: \"Siti\" <siti@example.com>")
	})

	t.Run("recipient must be one address", func(t *testing.T) {
		for _, to := range []string{"ali@example.com\r\nBcc: attacker@evil.test", "not-an-address", "a@example.com, b@example.com"} {
			_, _, err := buildMessage("noreply@techlympics.my", to, "Hi", "<3@test>", "", now)
			assert.ErrorIs(t, err, ErrInvalidRecipient, to)
		}
	})
}

func TestSendCampaignBatch(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeMailer{failTo: map[string]bool{"bad@example.com": true}}
	service := NewEmailServiceWith(db, mailer)

	template := models.EmailTemplate{TemplateName: "Invite", Subject: "Hello {{name}}", Content: "<body>Team {{team}}</body>"}
	require.NoError(t, db.Create(&template).Error)
	campaign := models.EmailCampaign{CampaignName: "Invites", TemplateID: template.ID, Status: models.CampaignDraft, TotalRecipients: 3}
	require.NoError(t, db.Create(&campaign).Error)

	recipients := []models.EmailRecipient{
		{CampaignID: campaign.ID, Email: "ali@example.com", Name: "Ali", Placeholders: datatypes.JSON(`{"team":"Alpha"}`), Status: models.RecipientQueued},
		{CampaignID: campaign.ID, Email: "bad@example.com", Name: "Bad", Status: models.RecipientQueued},
		{CampaignID: campaign.ID, Email: "siti@example.com", Name: "Siti", Status: models.RecipientQueued},
	}
	require.NoError(t, db.Create(&recipients).Error)

	t.Run("first batch", func(t *testing.T) {
		result, err := service.SendCampaignBatch(campaign.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Processed)
		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, int64(1), result.Remaining)
		assert.False(t, result.Completed)

		var reloaded models.EmailCampaign
		require.NoError(t, db.First(&reloaded, campaign.ID).Error)
		assert.Equal(t, models.CampaignInProgress, reloaded.Status)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "Hello Ali", mailer.sent[0].subject)
		assert.Contains(t, mailer.sent[0].body, "Team Alpha")
		assert.Contains(t, mailer.sent[0].body, ".gif")

		var failed models.EmailRecipient
		require.NoError(t, db.Where("email = ?", "bad@example.com").First(&failed).Error)
		assert.Equal(t, models.RecipientFailed, failed.Status)

		var outgoing []models.EmailOutgoing
		require.NoError(t, db.Order("id").Find(&outgoing).Error)
		require.Len(t, outgoing, 2)
		assert.Equal(t, models.DeliverySent, outgoing[0].DeliveryStatus)
		assert.NotNil(t, outgoing[0].SentAt)
		assert.Equal(t, "<1@test>", outgoing[0].MessageID)
		assert.True(t, strings.HasPrefix(outgoing[0].TrackingID, fmt.Sprintf("%d-%d-", campaign.ID, recipients[0].ID)))
		assert.Equal(t, models.DeliveryFailed, outgoing[1].DeliveryStatus)
		assert.Equal(t, "mailbox unavailable", outgoing[1].ErrorMessage)
	})

	t.Run("second batch drains the queue", func(t *testing.T) {
		result, err := service.SendCampaignBatch(campaign.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Processed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("empty batch completes the campaign", func(t *testing.T) {
		result, err := service.SendCampaignBatch(campaign.ID, 0)
		require.NoError(t, err)
		assert.True(t, result.Completed)

		var reloaded models.EmailCampaign
		require.NoError(t, db.First(&reloaded, campaign.ID).Error)
		assert.Equal(t, models.CampaignCompleted, reloaded.Status)
		assert.NotNil(t, reloaded.CompletedAt)
	})
}

func TestRecordOpen(t *testing.T) {
	db := setupTestDB(t)
	service := NewEmailServiceWith(db, &fakeMailer{})

	outgoing := models.EmailOutgoing{RecipientEmail: "a@example.com", Subject: "s", TrackingID: "1-1-1", DeliveryStatus: models.DeliverySent}
	require.NoError(t, db.Create(&outgoing).Error)

	require.NoError(t, service.RecordOpen("1-1-1"))
	require.NoError(t, service.RecordOpen("1-1-1"))
	require.NoError(t, service.RecordOpen("does-not-exist"))

	var reloaded models.EmailOutgoing
	require.NoError(t, db.First(&reloaded, outgoing.ID).Error)
	assert.Equal(t, 2, reloaded.OpenCount)
	assert.NotNil(t, reloaded.OpenedAt)
}

func TestSMTPMailerNotConfigured(t *testing.T) {
	_, err := (&SMTPMailer{}).Send("a@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

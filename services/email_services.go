package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/mail"
	"net/smtp"
	"regexp"
	"strings"
	"time"

	"techlympics/config"
	"techlympics/logger"
	"techlympics/metrics"
	"techlympics/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCampaignBatchSize is the number of recipients sent per batch call
const DefaultCampaignBatchSize = 50

var ErrMailerNotConfigured = errors.New("SMTP is not configured")

// Mailer delivers one HTML message and returns its Message-ID
type Mailer interface {
	Send(to, subject, htmlBody string) (string, error)
}

// SMTPMailer sends mail through the configured SMTP server
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		host:     config.MailHost,
		port:     config.MailPort,
		username: config.MailUsername,
		password: config.MailPassword,
		from:     config.MailFrom,
	}
}

// Configured reports whether a host is set
func (m *SMTPMailer) Configured() bool {
	return m.host != ""
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) (string, error) {
	if !m.Configured() {
		return "", ErrMailerNotConfigured
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), m.host)
	recipient, msg, err := buildMessage(m.from, to, subject, messageID, htmlBody, time.Now())
	if err != nil {
		return "", err
	}

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{recipient}, msg); err != nil {
		return "", err
	}
	return messageID, nil
}

var ErrInvalidRecipient = errors.New("invalid recipient address")

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue keeps a value on a single header line
func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

// buildMessage returns the envelope recipient and the full message; the subject is RFC 2047 encoded
func buildMessage(from, to, subject, messageID, htmlBody string, now time.Time) (string, []byte, error) {
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}

	headers := []string{
		"From: " + headerValue(from),
		"To: " + addr.String(),
		"Subject: " + mime.QEncoding.Encode("UTF-8", headerValue(subject)),
		"Message-ID: " + headerValue(messageID),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	return addr.Address, []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody), nil
}

// EmailService renders templates, sends campaigns and records deliveries
type EmailService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db, mailer: NewSMTPMailer()}
}

// NewEmailServiceWith uses the given mailer instead of SMTP
func NewEmailServiceWith(db *gorm.DB, mailer Mailer) *EmailService {
	return &EmailService{db: db, mailer: mailer}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// RenderPlaceholders replaces {{key}} with values; unknown keys become empty
func RenderPlaceholders(text string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return values[key]
	})
}

// TrackingPixelURL is the open tracking URL of an outgoing email
func TrackingPixelURL(trackingID string) string {
	return strings.TrimSuffix(config.TrackingBaseUrl, "/") + "/email/track/" + trackingID + ".gif"
}

// InjectTrackingPixel adds a 1x1 image before </body>, or at the end when there is none
func InjectTrackingPixel(content, trackingID string) string {
	pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:none" />`, html.EscapeString(TrackingPixelURL(trackingID)))
	lower := strings.ToLower(content)
	if idx := strings.LastIndex(lower, "</body>"); idx >= 0 {
		return content[:idx] + pixel + content[idx:]
	}
	return content + pixel
}

func recipientValues(recipient *models.EmailRecipient) map[string]string {
	values := map[string]string{}
	if len(recipient.Placeholders) > 0 {
		var raw map[string]interface{}
		if err := json.Unmarshal(recipient.Placeholders, &raw); err == nil {
			for k, v := range raw {
				if v == nil {
					continue
				}
				values[k] = fmt.Sprint(v)
			}
		}
	}
	if _, ok := values["name"]; !ok {
		values["name"] = recipient.Name
	}
	if _, ok := values["email"]; !ok {
		values["email"] = recipient.Email
	}
	return values
}

// SendTracked sends an outgoing row and records SENT with the Message-ID or FAILED with the error
func (s *EmailService) SendTracked(outgoing *models.EmailOutgoing) error {
	content := outgoing.Content
	if outgoing.TrackingID != "" {
		content = InjectTrackingPixel(content, outgoing.TrackingID)
	}

	messageID, sendErr := s.mailer.Send(outgoing.RecipientEmail, outgoing.Subject, content)
	now := time.Now()
	updates := map[string]interface{}{}
	if sendErr != nil {
		updates["delivery_status"] = models.DeliveryFailed
		updates["error_message"] = sendErr.Error()
		outgoing.DeliveryStatus = models.DeliveryFailed
		metrics.EmailsSent.WithLabelValues("failed").Inc()
	} else {
		updates["delivery_status"] = models.DeliverySent
		updates["sent_at"] = now
		updates["message_id"] = messageID
		outgoing.DeliveryStatus = models.DeliverySent
		outgoing.SentAt = &now
		outgoing.MessageID = messageID
		metrics.EmailsSent.WithLabelValues("sent").Inc()
	}

	if err := s.db.Model(outgoing).Updates(updates).Error; err != nil {
		return fmt.Errorf("update outgoing email: %w", err)
	}
	return sendErr
}

// BatchResult summarises one campaign batch
type BatchResult struct {
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Remaining int64  `json:"remaining"`
	Completed bool   `json:"completed"`
	Message   string `json:"message,omitempty"`
}

// SendCampaignBatch sends up to batchSize queued recipients of a campaign and completes it once none remain
func (s *EmailService) SendCampaignBatch(campaignID uint, batchSize int) (*BatchResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultCampaignBatchSize
	}

	var campaign models.EmailCampaign
	if err := s.db.Preload("Template").First(&campaign, campaignID).Error; err != nil {
		return nil, err
	}
	if campaign.Template == nil {
		return nil, fmt.Errorf("campaign %d has no template", campaignID)
	}

	if campaign.Status != models.CampaignInProgress {
		if err := s.db.Model(&campaign).Update("status", models.CampaignInProgress).Error; err != nil {
			return nil, fmt.Errorf("start campaign: %w", err)
		}
	}

	var recipients []models.EmailRecipient
	if err := s.db.Where("campaign_id = ? AND status = ?", campaignID, models.RecipientQueued).
		Order("id").Limit(batchSize).Find(&recipients).Error; err != nil {
		return nil, err
	}

	result := &BatchResult{}
	if len(recipients) == 0 {
		now := time.Now()
		if err := s.db.Model(&campaign).Updates(map[string]interface{}{
			"status":       models.CampaignCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return nil, fmt.Errorf("complete campaign: %w", err)
		}
		result.Completed = true
		result.Message = "No more recipients to process"
		return result, nil
	}

	log := logger.Log.WithField("campaign_id", campaignID)
	templateID := campaign.Template.ID
	for i := range recipients {
		recipient := &recipients[i]
		values := recipientValues(recipient)
		recipientID := recipient.ID

		outgoing := models.EmailOutgoing{
			CampaignID:     &campaignID,
			RecipientID:    &recipientID,
			TemplateID:     &templateID,
			RecipientEmail: recipient.Email,
			Subject:        RenderPlaceholders(campaign.Template.Subject, values),
			Content:        RenderPlaceholders(campaign.Template.Content, values),
			TrackingID:     fmt.Sprintf("%d-%d-%d", campaignID, recipient.ID, time.Now().UnixMilli()),
			DeliveryStatus: models.DeliveryPending,
		}
		if err := s.db.Create(&outgoing).Error; err != nil {
			return nil, fmt.Errorf("create outgoing email: %w", err)
		}

		status := models.RecipientSent
		if err := s.SendTracked(&outgoing); err != nil {
			log.WithError(err).WithField("recipient", recipient.Email).Warn("campaign email failed")
			status = models.RecipientFailed
			result.Failed++
		} else {
			result.Sent++
		}

		if err := s.db.Model(recipient).Update("status", status).Error; err != nil {
			return nil, fmt.Errorf("update recipient: %w", err)
		}
		result.Processed++
	}

	if err := s.db.Model(&models.EmailRecipient{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.RecipientQueued).
		Count(&result.Remaining).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// SendTemplate renders a template for one address and sends it with open tracking
func (s *EmailService) SendTemplate(template *models.EmailTemplate, to string, values map[string]string) (*models.EmailOutgoing, error) {
	rendered := map[string]string{"email": to}
	for k, v := range values {
		rendered[k] = v
	}
	templateID := template.ID
	outgoing := models.EmailOutgoing{
		TemplateID:     &templateID,
		RecipientEmail: to,
		Subject:        RenderPlaceholders(template.Subject, rendered),
		Content:        RenderPlaceholders(template.Content, rendered),
		TrackingID:     fmt.Sprintf("t%d-%s", template.ID, uuid.New().String()),
		DeliveryStatus: models.DeliveryPending,
	}
	if err := s.db.Create(&outgoing).Error; err != nil {
		return nil, fmt.Errorf("create outgoing email: %w", err)
	}
	return &outgoing, s.SendTracked(&outgoing)
}

// RecordOpen marks an outgoing email as opened; unknown tracking ids are ignored
func (s *EmailService) RecordOpen(trackingID string) error {
	var outgoing models.EmailOutgoing
	result := s.db.Where("tracking_id = ?", trackingID).Limit(1).Find(&outgoing)
	if result.Error != nil || result.RowsAffected == 0 {
		return result.Error
	}

	updates := map[string]interface{}{"open_count": gorm.Expr("open_count + 1")}
	if outgoing.OpenedAt == nil {
		updates["opened_at"] = time.Now()
	}
	return s.db.Model(&outgoing).Updates(updates).Error
}

// SendPasswordResetEmail sends the reset link to a user
func (s *EmailService) SendPasswordResetEmail(to, resetToken string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", config.ClientUrl, resetToken)

	body := fmt.Sprintf(strings.TrimSpace(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Reset Your Password</title>
</head>
<body style="background-color: #f9fafb; margin: 0; padding: 0; font-family: Arial, sans-serif;">
    <table width="100%%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <tr>
            <td style="background: #0f172a; padding: 40px 20px; text-align: center; border-radius: 12px;">
                <h1 style="color: #ffffff; margin-bottom: 30px; font-size: 24px;">Reset Your Password</h1>
                <p style="color: #cbd5e1; margin-bottom: 30px; font-size: 16px;">Click the button below to reset your password. This link will expire in 1 hour.</p>
                <a href="%s" style="display: inline-block; background-color: #2563eb; color: #ffffff; text-decoration: none; padding: 12px 30px; border-radius: 25px; font-weight: bold; margin-bottom: 30px;">Reset Password</a>
                <p style="color: #cbd5e1; font-size: 14px;">If you didn't request this password reset, please ignore this email.</p>
            </td>
        </tr>
        <tr>
            <td style="text-align: center; padding-top: 20px;">
                <p style="color: #6b7280; font-size: 14px;">Malaysia Techlympics</p>
            </td>
        </tr>
    </table>
</body>
</html>
`), html.EscapeString(resetLink))

	_, err := s.mailer.Send(to, "Reset Your Techlympics Password", body)
	return err
}

package email

import "techlympics/models"

// Constants for error messages
const (
	ErrTemplateNotFound       = "Email template not found"
	ErrCampaignNotFound       = "Email campaign not found"
	ErrRecipientNotFound      = "Recipient not found"
	ErrFailedToGet            = "Failed to get email data"
	ErrFailedToSave           = "Failed to save email data"
	ErrFailedToSend           = "Failed to send email"
	ErrTemplateInUse          = "Email template is used by campaigns"
	ErrCampaignNotDraft       = "Only draft campaigns can be edited"
	ErrCampaignInProgress     = "A campaign in progress cannot be deleted"
	ErrCampaignCompleted      = "Campaign is already completed"
	ErrMailerNotConfigured    = "SMTP is not configured"
	ErrInvalidBatchSize       = "batchSize must be between 1 and 500"
	ErrFailedToParseFile      = "Failed to parse XLSX file"
	ErrMissingEmailColumn     = "No sheet has an email column"
	MsgTemplateDeleted        = "Email template deleted"
	MsgCampaignDeleted        = "Email campaign deleted"
	MsgRecipientDeleted       = "Recipient removed"
	MsgTestEmailSent          = "Test email sent"
	MsgFailedRecipientsQueued = "Failed recipients queued again"
)

// TemplateRequest creates or replaces an email template
type TemplateRequest struct {
	TemplateName   string `json:"templateName" binding:"required"`
	Title          string `json:"title"`
	Subject        string `json:"subject" binding:"required"`
	Content        string `json:"content" binding:"required"`
	DeliveryMethod string `json:"deliveryMethod" binding:"omitempty,oneof=SMTP"`
}

// TestEmailRequest sends a template to one address
type TestEmailRequest struct {
	Email        string            `json:"email" binding:"required,email"`
	Placeholders map[string]string `json:"placeholders"`
}

// CampaignRequest creates or updates a draft campaign
type CampaignRequest struct {
	CampaignName string `json:"campaignName" binding:"required"`
	Description  string `json:"description"`
	TemplateID   uint   `json:"templateId" binding:"required"`
}

// RecipientInput is one address added to a campaign
type RecipientInput struct {
	Email        string            `json:"email" binding:"required,email"`
	Name         string            `json:"name"`
	Placeholders map[string]string `json:"placeholders"`
}

type RecipientsRequest struct {
	Recipients []RecipientInput `json:"recipients" binding:"required,min=1,dive"`
}

// AddRecipientsResult reports how many addresses were queued
type AddRecipientsResult struct {
	Added           int `json:"added"`
	Skipped         int `json:"skipped"`
	TotalRecipients int `json:"totalRecipients"`
}

// CampaignStats counts the recipients and deliveries of a campaign
type CampaignStats struct {
	Queued int64 `json:"queued"`
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
	Opened int64 `json:"opened"`
}

// CampaignDetail is a campaign with its delivery counters
type CampaignDetail struct {
	models.EmailCampaign
	Stats CampaignStats `json:"stats"`
}

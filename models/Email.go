package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CampaignDraft      = "DRAFT"
	CampaignInProgress = "IN_PROGRESS"
	CampaignCompleted  = "COMPLETED"
	CampaignFailed     = "FAILED"

	RecipientQueued = "QUEUED"
	RecipientSent   = "SENT"
	RecipientFailed = "FAILED"

	DeliveryPending = "PENDING"
	DeliverySent    = "SENT"
	DeliveryFailed  = "FAILED"
)

type EmailTemplate struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TemplateName   string    `gorm:"type:varchar(255);not null" json:"template_name"`
	Title          string    `gorm:"type:varchar(255)" json:"title"`
	Subject        string    `gorm:"type:varchar(255);not null" json:"subject"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	DeliveryMethod string    `gorm:"type:varchar(20);not null;default:SMTP" json:"delivery_method"`
	CreatedBy      uint      `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type EmailCampaign struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CampaignName    string         `gorm:"type:varchar(255);not null" json:"campaign_name"`
	Description     string         `gorm:"type:text" json:"description"`
	TemplateID      uint           `gorm:"not null;index" json:"template_id"`
	Template        *EmailTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Status          string         `gorm:"type:varchar(20);not null;default:DRAFT" json:"status"`
	TotalRecipients int            `gorm:"not null;default:0" json:"total_recipients"`
	CompletedAt     *time.Time     `json:"completed_at"`
	CreatedBy       uint           `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type EmailRecipient struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CampaignID   uint           `gorm:"not null;index" json:"campaign_id"`
	Email        string         `gorm:"type:varchar(190);not null" json:"email"`
	Name         string         `gorm:"type:varchar(255)" json:"name"`
	Placeholders datatypes.JSON `json:"placeholders"`
	Status       string         `gorm:"type:varchar(20);not null;default:QUEUED;index" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// EmailOutgoing is one delivered (or attempted) message and its open tracking
type EmailOutgoing struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CampaignID     *uint      `gorm:"index" json:"campaign_id"`
	RecipientID    *uint      `gorm:"index" json:"recipient_id"`
	TemplateID     *uint      `gorm:"index" json:"template_id"`
	RecipientEmail string     `gorm:"type:varchar(190);not null" json:"recipient_email"`
	Subject        string     `gorm:"type:varchar(255);not null" json:"subject"`
	Content        string     `gorm:"type:text" json:"content"`
	TrackingID     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"tracking_id"`
	DeliveryStatus string     `gorm:"type:varchar(20);not null;default:PENDING" json:"delivery_status"`
	SentAt         *time.Time `json:"sent_at"`
	OpenedAt       *time.Time `json:"opened_at"`
	OpenCount      int        `gorm:"not null;default:0" json:"open_count"`
	MessageID      string     `gorm:"type:varchar(255)" json:"message_id"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

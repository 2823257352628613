package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TemplateStatusActive   = "ACTIVE"
	TemplateStatusInactive = "INACTIVE"

	TargetGeneral               = "GENERAL"
	TargetEventParticipant      = "EVENT_PARTICIPANT"
	TargetEventWinner           = "EVENT_WINNER"
	TargetNonContestParticipant = "NON_CONTEST_PARTICIPANT"
	TargetQuizParticipant       = "QUIZ_PARTICIPANT"
	TargetQuizWinner            = "QUIZ_WINNER"

	CertificateDraft      = "DRAFT"
	CertificateGenerated  = "GENERATED"
	CertificateSent       = "SENT"
	CertificateDownloaded = "DOWNLOADED"
)

// TargetTypes lists every certificate target type
var TargetTypes = []string{
	TargetGeneral,
	TargetEventParticipant,
	TargetEventWinner,
	TargetNonContestParticipant,
	TargetQuizParticipant,
	TargetQuizWinner,
}

// CertTemplate holds the layout (canvas, elements, calibration) composited onto a base PDF
type CertTemplate struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	TemplateName     string         `gorm:"type:varchar(255);not null" json:"template_name"`
	BasePdfPath      string         `gorm:"type:varchar(500)" json:"base_pdf_path"`
	Configuration    datatypes.JSON `json:"configuration"`
	Status           string         `gorm:"type:varchar(20);not null;default:ACTIVE;index" json:"status"`
	TargetType       string         `gorm:"type:varchar(40);not null;default:GENERAL" json:"target_type"`
	EventID          *uint          `gorm:"index" json:"event_id"`
	Event            *Event         `gorm:"foreignKey:EventID" json:"event,omitempty"`
	QuizID           *uint          `gorm:"index" json:"quiz_id"`
	WinnerRangeStart *int           `json:"winner_range_start"`
	WinnerRangeEnd   *int           `json:"winner_range_end"`
	CreatedBy        uint           `json:"created_by"`
	UpdatedBy        *uint          `json:"updated_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type Certificate struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	TemplateID     uint          `gorm:"not null;index" json:"template_id"`
	Template       *CertTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	RecipientName  string        `gorm:"type:varchar(255);not null" json:"recipient_name"`
	RecipientEmail string        `gorm:"type:varchar(190)" json:"recipient_email"`
	RecipientType  string        `gorm:"type:varchar(30);not null;default:PARTICIPANT" json:"recipient_type"`
	ICNumber       string        `gorm:"column:ic_number;type:varchar(20);index" json:"ic_number"`
	ContingentName string        `gorm:"type:varchar(255)" json:"contingent_name"`
	TeamName       string        `gorm:"type:varchar(255)" json:"team_name"`
	ContestName    string        `gorm:"type:varchar(255)" json:"contest_name"`
	AwardTitle     string        `gorm:"type:varchar(255)" json:"award_title"`
	Position       *int          `json:"position"`
	UniqueCode     string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"unique_code"`
	SerialNumber   *string       `gorm:"type:varchar(50);uniqueIndex" json:"serial_number"`
	FilePath       string        `gorm:"type:varchar(500)" json:"file_path"`
	Status         string        `gorm:"type:varchar(20);not null;default:DRAFT" json:"status"`
	IssuedAt       *time.Time    `json:"issued_at"`
	CreatedBy      uint          `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// CertificateSerial keeps the last issued sequence per year, template and target type
type CertificateSerial struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Year         int       `gorm:"not null;uniqueIndex:idx_serial_scope" json:"year"`
	TemplateID   uint      `gorm:"not null;uniqueIndex:idx_serial_scope" json:"template_id"`
	TargetType   string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_serial_scope" json:"target_type"`
	TypeCode     string    `gorm:"type:varchar(10);not null" json:"type_code"`
	LastSequence int       `gorm:"not null;default:0" json:"last_sequence"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

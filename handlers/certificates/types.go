package certificates

import (
	"encoding/json"

	"techlympics/services"
)

// Constants for error messages
const (
	ErrTemplateNotFound     = "Certificate template not found"
	ErrCertificateNotFound  = "Certificate not found"
	ErrFailedToGet          = "Failed to get certificates"
	ErrFailedToSave         = "Failed to save certificate template"
	ErrFailedToIssue        = "Failed to issue certificates"
	ErrFailedToRender       = "Failed to render certificate"
	ErrInvalidConfiguration = "Invalid template configuration"
	ErrInvalidWinnerRange   = "Winner range start must not exceed its end"
	ErrTemplateInactive     = "Certificate template is inactive"
	ErrTemplateWithoutEvent = "Certificate template is not linked to an event"
	ErrTemplateNotForWinner = "Certificate template does not target event winners"
	ErrTemplateHasNoBasePdf = "Certificate template has no base PDF"
	ErrInvalidBasePdfPath   = "Base PDF path must stay inside the public directory"
	ErrInvalidSerialNumber  = "Invalid serial number format"
	ErrMissingVerifyCode    = "A serial number or unique code is required"
	ErrInvalidTargetType    = "Invalid target type"
	ErrNothingToDownload    = "None of the certificates can be rendered"
	MsgTemplateDeactivated  = "Certificate template deactivated"
	MsgSequenceReset        = "Serial sequence reset"
)

// TemplateRequest creates or replaces a certificate template
type TemplateRequest struct {
	TemplateName     string          `json:"templateName" binding:"required"`
	BasePdfPath      string          `json:"basePdfPath"`
	Configuration    json.RawMessage `json:"configuration"`
	Status           string          `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	TargetType       string          `json:"targetType" binding:"omitempty,oneof=GENERAL EVENT_PARTICIPANT EVENT_WINNER NON_CONTEST_PARTICIPANT QUIZ_PARTICIPANT QUIZ_WINNER"`
	EventID          *uint           `json:"eventId"`
	QuizID           *uint           `json:"quizId"`
	WinnerRangeStart *int            `json:"winnerRangeStart" binding:"omitempty,min=1"`
	WinnerRangeEnd   *int            `json:"winnerRangeEnd" binding:"omitempty,min=1"`
}

// GenerateRequest issues one certificate per recipient
type GenerateRequest struct {
	TemplateID uint                        `json:"templateId" binding:"required"`
	Recipients []services.CertificateInput `json:"recipients" binding:"required,min=1,dive"`
}

type DownloadRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1,max=500"`
}

type ResetSequenceRequest struct {
	TargetType string `json:"targetType" binding:"required"`
	Year       int    `json:"year"`
}

// VerificationResponse is the public view of a verified certificate
type VerificationResponse struct {
	Valid          bool    `json:"valid"`
	RecipientName  string  `json:"recipientName"`
	ContingentName string  `json:"contingentName"`
	ContestName    string  `json:"contestName"`
	AwardTitle     string  `json:"awardTitle"`
	SerialNumber   *string `json:"serialNumber"`
	UniqueCode     string  `json:"uniqueCode"`
	TemplateName   string  `json:"templateName"`
	IssuedAt       string  `json:"issuedAt"`
}

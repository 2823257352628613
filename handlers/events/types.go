package events

import "time"

// Constants for error messages
const (
	ErrEventNotFound        = "Event not found"
	ErrFailedToGetEvents    = "Failed to get events"
	ErrFailedToSave         = "Failed to save event"
	ErrFailedToDelete       = "Failed to delete event"
	ErrEventInUse           = "Event has registrations or attendance records"
	ErrCodeTaken            = "Event code already exists"
	ErrInvalidDates         = "End date must be after start date"
	ErrContestNotFound      = "Contest not found"
	ErrEventContestNotFound = "Event contest not found"
	ErrEventContestExists   = "Contest is already part of this event"
	ErrEventContestInUse    = "Event contest has registrations"
	ErrRegistrationNotFound = "Registration not found"
	ErrFailedToReport       = "Failed to build report"
)

type EventRequest struct {
	Name        string    `json:"name" binding:"required"`
	Code        string    `json:"code" binding:"required,max=30"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Venue       string    `json:"venue"`
	ScopeArea   string    `json:"scope_area" binding:"omitempty,oneof=NATIONAL ZONE STATE OPEN"`
	ZoneID      *uint     `json:"zone_id"`
	StateID     *uint     `json:"state_id"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN CLOSED CUTOFF_REGISTRATION"`
}

type EventContestRequest struct {
	ContestID           uint   `json:"contest_id" binding:"required"`
	MaxParticipants     *int   `json:"max_participants" binding:"omitempty,min=0"`
	PersonInCharge      string `json:"person_in_charge"`
	PersonInChargePhone string `json:"person_in_charge_phone"`
	JudgingTemplateID   *uint  `json:"judging_template_id"`
	IsActive            *bool  `json:"is_active"`
}

type RegistrationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED ACCEPTED APPROVED_SPECIAL REJECTED"`
}

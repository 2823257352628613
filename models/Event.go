package models

import "time"

const (
	ScopeNational = "NATIONAL"
	ScopeZone     = "ZONE"
	ScopeState    = "STATE"
	ScopeOpen     = "OPEN"

	EventStatusOpen               = "OPEN"
	EventStatusClosed             = "CLOSED"
	EventStatusCutoffRegistration = "CUTOFF_REGISTRATION"

	RegistrationPending         = "PENDING"
	RegistrationApproved        = "APPROVED"
	RegistrationAccepted        = "ACCEPTED"
	RegistrationApprovedSpecial = "APPROVED_SPECIAL"
	RegistrationRejected        = "REJECTED"
)

// ApprovedRegistrationStatuses are the registration statuses counted as taking part
var ApprovedRegistrationStatuses = []string{RegistrationApproved, RegistrationAccepted, RegistrationApprovedSpecial}

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Code        string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	Venue       string    `gorm:"type:varchar(255)" json:"venue"`
	ScopeArea   string    `gorm:"type:varchar(20);not null;default:OPEN" json:"scope_area"`
	ZoneID      *uint     `gorm:"index" json:"zone_id"`
	Zone        *Zone     `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	StateID     *uint     `gorm:"index" json:"state_id"`
	State       *State    `gorm:"foreignKey:StateID" json:"state,omitempty"`
	Status      string    `gorm:"type:varchar(30);not null;default:OPEN" json:"status"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EventContest struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	EventID             uint             `gorm:"not null;uniqueIndex:idx_event_contest" json:"event_id"`
	Event               *Event           `gorm:"foreignKey:EventID" json:"event,omitempty"`
	ContestID           uint             `gorm:"not null;uniqueIndex:idx_event_contest" json:"contest_id"`
	Contest             *Contest         `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	MaxParticipants     *int             `json:"max_participants"`
	PersonInCharge      string           `gorm:"type:varchar(150)" json:"person_in_charge"`
	PersonInChargePhone string           `gorm:"type:varchar(30)" json:"person_in_charge_phone"`
	JudgingTemplateID   *uint            `gorm:"index" json:"judging_template_id"`
	JudgingTemplate     *JudgingTemplate `gorm:"foreignKey:JudgingTemplateID" json:"judging_template,omitempty"`
	IsActive            bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

type EventContestTeam struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	EventContestID uint          `gorm:"not null;uniqueIndex:idx_event_contest_team" json:"event_contest_id"`
	EventContest   *EventContest `gorm:"foreignKey:EventContestID" json:"event_contest,omitempty"`
	TeamID         uint          `gorm:"not null;uniqueIndex:idx_event_contest_team" json:"team_id"`
	Team           *Team         `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	TeamPriority   int           `gorm:"not null;default:0" json:"team_priority"`
	Status         string        `gorm:"type:varchar(30);not null;default:PENDING" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

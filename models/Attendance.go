package models

import "time"

const (
	AttendancePresent    = "Present"
	AttendanceNotPresent = "Not Present"
)

// AttendanceEndpoint is a QR scanner station of an event
type AttendanceEndpoint struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventID      uint      `gorm:"not null;index" json:"event_id"`
	Event        *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
	EndpointHash string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"endpoint_hash"`
	Passcode     string    `gorm:"type:varchar(30);not null" json:"passcode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AttendanceManager struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	EventID          uint        `gorm:"not null;uniqueIndex:idx_attendance_manager" json:"event_id"`
	ManagerID        uint        `gorm:"not null;uniqueIndex:idx_attendance_manager" json:"manager_id"`
	Manager          *User       `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	ContingentID     uint        `gorm:"not null;index" json:"contingent_id"`
	Contingent       *Contingent `gorm:"foreignKey:ContingentID" json:"contingent,omitempty"`
	Hashcode         string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"hashcode"`
	AttendanceStatus string      `gorm:"type:varchar(20);not null;default:'Not Present'" json:"attendance_status"`
	AttendanceDate   *time.Time  `json:"attendance_date"`
	AttendanceTime   *time.Time  `json:"attendance_time"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type AttendanceContestant struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	EventID          uint        `gorm:"not null;uniqueIndex:idx_attendance_contestant" json:"event_id"`
	ContestantID     uint        `gorm:"not null;uniqueIndex:idx_attendance_contestant" json:"contestant_id"`
	Contestant       *Contestant `gorm:"foreignKey:ContestantID" json:"contestant,omitempty"`
	ContingentID     uint        `gorm:"not null;index" json:"contingent_id"`
	TeamID           *uint       `gorm:"index" json:"team_id"`
	IC               string      `gorm:"column:ic;type:varchar(20);index" json:"ic"`
	Hashcode         string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"hashcode"`
	AttendanceStatus string      `gorm:"type:varchar(20);not null;default:'Not Present'" json:"attendance_status"`
	AttendanceDate   *time.Time  `json:"attendance_date"`
	AttendanceTime   *time.Time  `json:"attendance_time"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type AttendanceTeam struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	EventID          uint          `gorm:"not null;uniqueIndex:idx_attendance_team" json:"event_id"`
	TeamID           uint          `gorm:"not null;uniqueIndex:idx_attendance_team" json:"team_id"`
	Team             *Team         `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	EventContestID   uint          `gorm:"not null;index" json:"event_contest_id"`
	EventContest     *EventContest `gorm:"foreignKey:EventContestID" json:"event_contest,omitempty"`
	ContingentID     uint          `gorm:"not null;index" json:"contingent_id"`
	Contingent       *Contingent   `gorm:"foreignKey:ContingentID" json:"contingent,omitempty"`
	Hashcode         string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"hashcode"`
	AttendanceStatus string        `gorm:"type:varchar(20);not null;default:'Not Present'" json:"attendance_status"`
	AttendanceDate   *time.Time    `json:"attendance_date"`
	AttendanceTime   *time.Time    `json:"attendance_time"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	EvaluationPoints   = "POINTS"
	EvaluationTime     = "TIME"
	EvaluationDiscrete = "DISCRETE"

	SessionInProgress = "IN_PROGRESS"
	SessionCompleted  = "COMPLETED"
)

type JudgingTemplate struct {
	ID          uint                       `gorm:"primaryKey" json:"id"`
	Name        string                     `gorm:"type:varchar(255);not null" json:"name"`
	Description string                     `gorm:"type:text" json:"description"`
	IsDefault   bool                       `gorm:"not null;default:false" json:"is_default"`
	ContestType string                     `gorm:"type:varchar(50)" json:"contest_type"`
	Criteria    []JudgingTemplateCriterion `gorm:"foreignKey:TemplateID" json:"criteria,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

type JudgingTemplateCriterion struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TemplateID     uint           `gorm:"not null;index" json:"template_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Weight         int            `gorm:"not null;default:1" json:"weight"`
	MaxScore       int            `gorm:"not null;default:10" json:"max_score"`
	EvaluationType string         `gorm:"type:varchar(20);not null;default:POINTS" json:"evaluation_type"`
	DiscreteValues datatypes.JSON `json:"discrete_values"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// JudgeEndpoint is a per-judge access link identified by its hashcode
type JudgeEndpoint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	Event     *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
	ContestID uint      `gorm:"not null;index" json:"contest_id"`
	Contest   *Contest  `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	JudgeName string    `gorm:"type:varchar(150)" json:"judge_name"`
	JudgeIC   string    `gorm:"type:varchar(20)" json:"judge_ic"`
	Hashcode  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"hashcode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type JudgingSession struct {
	ID               uint                  `gorm:"primaryKey" json:"id"`
	JudgeID          *uint                 `gorm:"index" json:"judge_id"`
	JudgeEndpointID  *uint                 `gorm:"index" json:"judge_endpoint_id"`
	AttendanceTeamID uint                  `gorm:"not null;index" json:"attendance_team_id"`
	AttendanceTeam   *AttendanceTeam       `gorm:"foreignKey:AttendanceTeamID" json:"attendance_team,omitempty"`
	EventContestID   uint                  `gorm:"not null;index" json:"event_contest_id"`
	EventContest     *EventContest         `gorm:"foreignKey:EventContestID" json:"event_contest,omitempty"`
	Status           string                `gorm:"type:varchar(20);not null;default:IN_PROGRESS" json:"status"`
	StartTime        time.Time             `json:"start_time"`
	EndTime          *time.Time            `json:"end_time"`
	TotalScore       decimal.NullDecimal   `gorm:"type:decimal(10,2)" json:"total_score"`
	Comments         string                `gorm:"type:text" json:"comments"`
	Scores           []JudgingSessionScore `gorm:"foreignKey:JudgingSessionID" json:"scores,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// JudgingSessionScore is a criterion snapshot taken when the session starts plus the judge's score
type JudgingSessionScore struct {
	ID                   uint                `gorm:"primaryKey" json:"id"`
	JudgingSessionID     uint                `gorm:"not null;index" json:"judging_session_id"`
	CriterionID          uint                `gorm:"not null" json:"criterion_id"`
	CriterionName        string              `gorm:"type:varchar(255);not null" json:"criterion_name"`
	CriterionWeight      int                 `gorm:"not null;default:1" json:"criterion_weight"`
	CriterionType        string              `gorm:"type:varchar(20);not null;default:POINTS" json:"criterion_type"`
	MaxScore             int                 `gorm:"not null;default:10" json:"max_score"`
	Score                decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"score"`
	Comments             string              `gorm:"type:text" json:"comments"`
	SelectedDiscreteText string              `gorm:"type:varchar(255)" json:"selected_discrete_text"`
	StartTime            *time.Time          `json:"start_time"`
	EndTime              *time.Time          `json:"end_time"`
	TotalTime            *int64              `json:"total_time"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

package models

import "time"

const (
	ParticipationIndividual = "INDIVIDUAL"
	ParticipationTeam       = "TEAM"

	MethodOnline   = "ONLINE"
	MethodPhysical = "PHYSICAL"
)

type Contest struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	Code              string        `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name              string        `gorm:"type:varchar(255);not null" json:"name"`
	Description       string        `gorm:"type:text" json:"description"`
	ContestType       string        `gorm:"type:varchar(50)" json:"contest_type"`
	Method            string        `gorm:"type:varchar(20);not null;default:PHYSICAL" json:"method"`
	JudgingMethod     string        `gorm:"type:varchar(30);not null;default:AI" json:"judging_method"`
	StartDate         *time.Time    `json:"start_date"`
	EndDate           *time.Time    `json:"end_date"`
	ParticipationMode string        `gorm:"type:varchar(20);not null;default:INDIVIDUAL" json:"participation_mode"`
	MaxMembersPerTeam *int          `json:"max_members_per_team"`
	TargetGroups      []TargetGroup `gorm:"many2many:contest_target_groups;" json:"target_groups,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

const (
	DefaultTeamMaxMembers = 4
	MinTeamMembers        = 1
	MaxTeamMembers        = 10
)

type Team struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	Hashcode     string       `gorm:"type:varchar(20);uniqueIndex;not null" json:"hashcode"`
	Description  string       `gorm:"type:text" json:"description"`
	ContestID    uint         `gorm:"not null;index" json:"contest_id"`
	Contest      *Contest     `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	ContingentID uint         `gorm:"not null;index" json:"contingent_id"`
	Contingent   *Contingent  `gorm:"foreignKey:ContingentID" json:"contingent,omitempty"`
	MaxMembers   int          `gorm:"not null;default:4" json:"max_members"`
	Status       string       `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	Members      []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// EffectiveMaxMembers is the contest limit when defined, otherwise the team's own
func (t *Team) EffectiveMaxMembers() int {
	if t.Contest != nil && t.Contest.MaxMembersPerTeam != nil && *t.Contest.MaxMembersPerTeam > 0 {
		return *t.Contest.MaxMembersPerTeam
	}
	if t.MaxMembers > 0 {
		return t.MaxMembers
	}
	return DefaultTeamMaxMembers
}

type TeamMember struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TeamID       uint        `gorm:"not null;uniqueIndex:idx_team_member" json:"team_id"`
	ContestantID uint        `gorm:"not null;uniqueIndex:idx_team_member" json:"contestant_id"`
	Contestant   *Contestant `gorm:"foreignKey:ContestantID" json:"contestant,omitempty"`
	Role         string      `gorm:"type:varchar(30);not null;default:MEMBER" json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
}

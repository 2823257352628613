package contests

import "time"

// Constants for error messages
const (
	ErrContestNotFound     = "Contest not found"
	ErrFailedToGetContests = "Failed to get contests"
	ErrFailedToCreate      = "Failed to create contest"
	ErrFailedToUpdate      = "Failed to update contest"
	ErrFailedToDelete      = "Failed to delete contest"
	ErrContestInUse        = "Contest has teams or event registrations"
	ErrCodeTaken           = "Contest code already exists"
	ErrInvalidDates        = "End date must be after start date"
)

type ContestRequest struct {
	Code              string     `json:"code" binding:"required,max=30"`
	Name              string     `json:"name" binding:"required"`
	Description       string     `json:"description"`
	ContestType       string     `json:"contest_type"`
	Method            string     `json:"method" binding:"omitempty,oneof=ONLINE PHYSICAL"`
	JudgingMethod     string     `json:"judging_method"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	ParticipationMode string     `json:"participation_mode" binding:"omitempty,oneof=INDIVIDUAL TEAM"`
	MaxMembersPerTeam *int       `json:"max_members_per_team" binding:"omitempty,min=1,max=10"`
	TargetGroupIDs    []uint     `json:"target_group_ids"`
}

package judging

import (
	"encoding/json"

	"techlympics/services"
)

// Constants for error messages
const (
	ErrTemplateNotFound      = "Judging template not found"
	ErrCriterionNotFound     = "Judging criterion not found"
	ErrEndpointNotFound      = "Judge endpoint not found"
	ErrEventNotFound         = "Event not found"
	ErrContestNotFound       = "Contest not found"
	ErrEventContestNotFound  = "Contest is not part of this event"
	ErrSessionNotFound       = "Judging session not found"
	ErrInvalidJudge          = "Invalid judge hashcode"
	ErrTemplateInUse         = "Judging template is used by event contests"
	ErrDefaultTemplateInUse  = "The default judging template is used by judging sessions"
	ErrInvalidDiscreteValues = "Discrete criteria need a JSON array of values"
	ErrSessionOutOfScope     = "Judging session does not belong to this judge's contest"
	ErrFailedToGet           = "Failed to get judging data"
	ErrFailedToSave          = "Failed to save judging data"
	ErrFailedToStartSession  = "Failed to start judging session"
	ErrFailedToUpdateScores  = "Failed to update scores"
	ErrFailedToBuildWorkbook = "Failed to build scoreboard workbook"
	ErrContestIDRequired     = "contestId is required"
)

// TemplateRequest creates or updates a judging template
type TemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
	ContestType string `json:"contestType"`
}

// CriterionRequest creates or updates one criterion of a template
type CriterionRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Weight         int             `json:"weight" binding:"omitempty,min=1"`
	MaxScore       int             `json:"maxScore" binding:"omitempty,min=1"`
	EvaluationType string          `json:"evaluationType" binding:"omitempty,oneof=POINTS TIME DISCRETE"`
	DiscreteValues json.RawMessage `json:"discreteValues"`
}

// EndpointRequest creates a judge access link for a contest of an event
type EndpointRequest struct {
	ContestID uint   `json:"contestId" binding:"required"`
	JudgeName string `json:"judgeName" binding:"required"`
	JudgeIC   string `json:"judgeIc" binding:"omitempty,ic_number"`
}

type StartSessionRequest struct {
	AttendanceTeamID uint `json:"attendanceTeamId" binding:"required"`
}

type ScoresRequest struct {
	Scores []services.ScoreUpdate `json:"scores" binding:"required,min=1,dive"`
}

type CompleteRequest struct {
	Comments string `json:"comments"`
}

// JudgeView is what a judge sees when opening an endpoint link
type JudgeView struct {
	EndpointID     uint                       `json:"endpointId"`
	JudgeName      string                     `json:"judgeName"`
	EventID        uint                       `json:"eventId"`
	ContestID      uint                       `json:"contestId"`
	EventContestID uint                       `json:"eventContestId"`
	Teams          []services.ScoreboardEntry `json:"teams"`
}

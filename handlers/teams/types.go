package teams

// Constants for error messages
const (
	ErrTeamNotFound       = "Team not found"
	ErrFailedToGetTeams   = "Failed to get teams"
	ErrFailedToUpdate     = "Failed to update team"
	ErrFailedToDelete     = "Failed to delete team"
	ErrTeamRegistered     = "Team is registered for an event"
	ErrNotManager         = "You do not manage this contingent"
	ErrContingentNotFound = "Contingent not found"
	ErrContestNotFound    = "Contest not found"
	ErrNotFound           = "Not found"
)

type TeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ContestID   uint   `json:"contest_id" binding:"required"`
	MaxMembers  int    `json:"max_members" binding:"omitempty,min=1,max=10"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members" binding:"omitempty,min=1,max=10"`
}

type MemberRequest struct {
	ContestantID uint   `json:"contestant_id" binding:"required"`
	Role         string `json:"role"`
}

type RegistrationRequest struct {
	EventContestID uint `json:"event_contest_id" binding:"required"`
}

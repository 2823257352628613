package contestants

// Constants for error messages
const (
	ErrContestantNotFound     = "Contestant not found"
	ErrFailedToGetContestants = "Failed to get contestants"
	ErrFailedToUpdate         = "Failed to update contestant"
	ErrFailedToDelete         = "Failed to delete contestant"
	ErrContestantInTeam       = "Contestant is still a member of a team"
	ErrNotManager             = "You do not manage this contingent"
	ErrContingentNotFound     = "Contingent not found"
	ErrMissingFile            = "Failed to get file"
)

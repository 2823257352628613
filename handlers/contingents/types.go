package contingents

// Constants for error messages
const (
	ErrContingentNotFound     = "Contingent not found"
	ErrFailedToGetContingents = "Failed to get contingents"
	ErrFailedToCreate         = "Failed to create contingent"
	ErrFailedToUpdate         = "Failed to update contingent"
	ErrFailedToDelete         = "Failed to delete contingent"
	ErrContingentInUse        = "Contingent still has contestants or teams"
	ErrNotManager             = "You do not manage this contingent"
	ErrRequestNotFound        = "Request not found"
	ErrFailedToReport         = "Failed to build contingent report"
)

type ContingentRequest struct {
	Name                string `json:"name" binding:"required"`
	ShortName           string `json:"short_name"`
	LogoUrl             string `json:"logo_url"`
	ContingentType      string `json:"contingent_type" binding:"required,oneof=SCHOOL HIGHER_INSTITUTION INDEPENDENT"`
	SchoolID            *uint  `json:"school_id"`
	HigherInstitutionID *uint  `json:"higher_institution_id"`
	StateID             *uint  `json:"state_id"`
}

type ReviewRequest struct {
	Approve bool `json:"approve"`
}

package reference

// Constants for error messages
const (
	ErrFailedToGetData     = "Failed to get reference data"
	ErrTargetGroupNotFound = "Target group not found"
	ErrFailedToSave        = "Failed to save target group"
	ErrTargetGroupInUse    = "Target group is used by contests"
	ErrMissingFile         = "Failed to get file"
	ErrInvalidAgeRange     = "max_age must not be lower than min_age"
)

type TargetGroupRequest struct {
	Code        string `json:"code" binding:"required,max=30"`
	Name        string `json:"name" binding:"required"`
	SchoolLevel string `json:"school_level" binding:"required,edu_level"`
	MinAge      int    `json:"min_age" binding:"min=0"`
	MaxAge      int    `json:"max_age" binding:"min=0"`
}

package attendance

// Constants for error messages
const (
	ErrEventNotFound    = "Event not found"
	ErrEndpointNotFound = "Attendance endpoint not found"
	ErrFailedToSync     = "Failed to sync attendance"
	ErrFailedToGet      = "Failed to get attendance"
	ErrFailedToMark     = "Failed to update attendance"
	ErrFailedToReport   = "Failed to build attendance report"
	ErrFailedToCreate   = "Failed to create endpoint"
	ErrInvalidPasscode  = "Invalid passcode"
)

type CheckInRequest struct {
	EventID      uint   `json:"eventId" binding:"required"`
	EndpointHash string `json:"endpointhash" binding:"required"`
	Hashcode     string `json:"hashcode" binding:"required"`
}

type MarkRequest struct {
	Kind    string `json:"kind" binding:"required,oneof=manager contestant team"`
	IDs     []uint `json:"ids" binding:"required,min=1"`
	Present bool   `json:"present"`
}

type VerifyEndpointRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

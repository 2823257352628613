package dashboard

// Constants for error messages
const (
	ErrFailedToGetStats = "Failed to get dashboard statistics"
	MsgCacheCleared     = "Dashboard cache cleared"
)

package announcements

import "time"

// Constants for error messages
const (
	ErrAnnouncementNotFound = "Announcement not found"
	ErrFailedToGet          = "Failed to get announcements"
	ErrFailedToSave         = "Failed to save announcement"
	ErrFailedToDelete       = "Failed to delete announcement"
)

type AnnouncementRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Link        string     `json:"link" binding:"omitempty,url"`
	Icon        string     `json:"icon"`
	IsActive    *bool      `json:"is_active"`
	PublishedAt *time.Time `json:"published_at"`
}

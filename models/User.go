package models

import "time"

// Role names recognised by the API
const (
	RoleAdmin               = "ADMIN"
	RoleOperator            = "OPERATOR"
	RoleViewer              = "VIEWER"
	RoleParticipantsManager = "PARTICIPANTS_MANAGER"
	RoleJudge               = "JUDGE"
	RoleParticipant         = "PARTICIPANT"
)

// User is either an organizer account or a participant (contingent manager) account
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(150);not null" json:"name"`
	Username  *string    `gorm:"type:varchar(100);uniqueIndex" json:"username"`
	Email     string     `gorm:"type:varchar(190);uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"`
	Role      string     `gorm:"type:varchar(30);not null;default:PARTICIPANT;index" json:"role"`
	Phone     string     `gorm:"type:varchar(30)" json:"phone"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsOrganizer reports whether the user logs into the organizer portal
func (u *User) IsOrganizer() bool {
	switch u.Role {
	case RoleAdmin, RoleOperator, RoleViewer, RoleParticipantsManager, RoleJudge:
		return true
	}
	return false
}

// HasRole reports whether the user holds one of the roles; ADMIN always does
func (u *User) HasRole(roles ...string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Token     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

type Zone struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	States []State `gorm:"foreignKey:ZoneID" json:"states,omitempty"`
}

type State struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ZoneID *uint  `gorm:"index" json:"zone_id"`
	Zone   *Zone  `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

// School is a primary or secondary school contingents can represent
type School struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Level     string    `gorm:"type:varchar(50)" json:"level"`
	Category  string    `gorm:"type:varchar(50)" json:"category"`
	Ppd       string    `gorm:"type:varchar(100)" json:"ppd"`
	City      string    `gorm:"type:varchar(100)" json:"city"`
	StateID   *uint     `gorm:"index" json:"state_id"`
	State     *State    `gorm:"foreignKey:StateID" json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HigherInstitution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	City      string    `gorm:"type:varchar(100)" json:"city"`
	StateID   *uint     `gorm:"index" json:"state_id"`
	State     *State    `gorm:"foreignKey:StateID" json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TargetGroup classifies contestants by age and education level to filter contests
type TargetGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	SchoolLevel string    `gorm:"type:varchar(50);not null" json:"school_level"`
	MinAge      int       `gorm:"not null;default:0" json:"min_age"`
	MaxAge      int       `gorm:"not null;default:0" json:"max_age"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Announcement is a news item shown on the public landing page
type Announcement struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Link        string     `gorm:"type:varchar(255)" json:"link"`
	Icon        string     `gorm:"type:varchar(50)" json:"icon"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedBy   uint       `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

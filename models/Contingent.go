package models

import "time"

const (
	ContingentTypeSchool            = "SCHOOL"
	ContingentTypeHigherInstitution = "HIGHER_INSTITUTION"
	ContingentTypeIndependent       = "INDEPENDENT"

	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// Contingent groups the contestants registered by one school, institution or independent body
type Contingent struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	Name                string              `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ShortName           string              `gorm:"type:varchar(50)" json:"short_name"`
	LogoUrl             string              `gorm:"type:varchar(255)" json:"logo_url"`
	ContingentType      string              `gorm:"type:varchar(30);not null;default:SCHOOL" json:"contingent_type"`
	SchoolID            *uint               `gorm:"index" json:"school_id"`
	School              *School             `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	HigherInstitutionID *uint               `gorm:"index" json:"higher_institution_id"`
	HigherInstitution   *HigherInstitution  `gorm:"foreignKey:HigherInstitutionID" json:"higher_institution,omitempty"`
	StateID             *uint               `gorm:"index" json:"state_id"`
	State               *State              `gorm:"foreignKey:StateID" json:"state,omitempty"`
	CreatedBy           *uint               `json:"created_by"`
	Managers            []ContingentManager `gorm:"foreignKey:ContingentID" json:"managers,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type ContingentManager struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;uniqueIndex:idx_contingent_manager" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ContingentID uint        `gorm:"not null;uniqueIndex:idx_contingent_manager" json:"contingent_id"`
	Contingent   *Contingent `gorm:"foreignKey:ContingentID" json:"contingent,omitempty"`
	IsOwner      bool        `gorm:"not null;default:false" json:"is_owner"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ContingentRequest is a participant asking to manage an existing contingent
type ContingentRequest struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ContingentID uint        `gorm:"not null;index" json:"contingent_id"`
	Contingent   *Contingent `gorm:"foreignKey:ContingentID" json:"contingent,omitempty"`
	Status       string      `gorm:"type:varchar(20);not null;default:PENDING" json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

const (
	EduLevelPrimary   = "sekolah rendah"
	EduLevelSecondary = "sekolah menengah"
	EduLevelYouth     = "belia"
)

// EduLevels lists the accepted education levels
var EduLevels = []string{EduLevelPrimary, EduLevelSecondary, EduLevelYouth}

type Contestant struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"type:varchar(255);not null" json:"name"`
	IC           string      `gorm:"column:ic;type:varchar(20);uniqueIndex;not null" json:"ic"`
	Gender       string      `gorm:"type:varchar(10);not null" json:"gender"`
	Age          int         `gorm:"not null" json:"age"`
	EduLevel     string      `gorm:"type:varchar(30);not null" json:"edu_level"`
	ClassGrade   string      `gorm:"type:varchar(20)" json:"class_grade"`
	ClassName    string      `gorm:"type:varchar(100)" json:"class_name"`
	Email        string      `gorm:"type:varchar(190)" json:"email"`
	Phone        string      `gorm:"type:varchar(30)" json:"phone"`
	Hashcode     string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"hashcode"`
	Status       string      `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	IsPPKI       bool        `gorm:"column:is_ppki;not null;default:false" json:"is_ppki"`
	ContingentID uint        `gorm:"not null;index" json:"contingent_id"`
	Contingent   *Contingent `gorm:"foreignKey:ContingentID" json:"contingent,omitempty"`
	CreatedBy    *uint       `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

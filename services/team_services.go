package services

import (
	"errors"
	"fmt"
	"strings"

	"techlympics/models"
	"techlympics/utils"

	"gorm.io/gorm"
)

var (
	ErrInvalidTeamSize           = fmt.Errorf("max members must be between %d and %d", models.MinTeamMembers, models.MaxTeamMembers)
	ErrTeamFull                  = errors.New("team has reached its maximum number of members")
	ErrMemberContingentMismatch  = errors.New("contestant does not belong to the team's contingent")
	ErrAlreadyTeamMember         = errors.New("contestant is already a member of this team")
	ErrDuplicateIC               = errors.New("a contestant with this IC number already exists")
	ErrInvalidIC                 = errors.New("IC number must contain 12 digits")
	ErrInvalidEduLevel           = errors.New("invalid education level")
	ErrRegistrationClosed        = errors.New("registration for this event is closed")
	ErrAlreadyRegistered         = errors.New("team is already registered for this contest")
	ErrEventContestFull          = errors.New("this contest has reached its maximum number of participants")
	ErrTeamContestMismatch       = errors.New("team was created for a different contest")
	ErrInvalidRegistrationStatus = errors.New("invalid registration status")
)

// ContestantInput is the data needed to register a contestant
type ContestantInput struct {
	Name       string `json:"name" binding:"required"`
	IC         string `json:"ic" binding:"required,ic_number"`
	Gender     string `json:"gender" binding:"required,oneof=MALE FEMALE"`
	Age        int    `json:"age" binding:"required,min=5,max=99"`
	EduLevel   string `json:"edu_level" binding:"required,edu_level"`
	ClassGrade string `json:"class_grade"`
	ClassName  string `json:"class_name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	IsPPKI     bool   `json:"is_ppki"`
}

// CreateContestant registers a contestant in a contingent with a fresh hashcode
func CreateContestant(db *gorm.DB, contingentID uint, input ContestantInput, createdBy *uint) (*models.Contestant, error) {
	// Step 1: Validate the IC number and education level
	ic := utils.NormalizeIC(input.IC)
	if !utils.IsValidIC(ic) {
		return nil, ErrInvalidIC
	}
	eduLevel := strings.ToLower(strings.TrimSpace(input.EduLevel))
	if !utils.IsValidEduLevel(eduLevel) {
		return nil, ErrInvalidEduLevel
	}

	// Step 2: IC numbers are unique across contingents
	var count int64
	if err := db.Model(&models.Contestant{}).Where("ic = ?", ic).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateIC
	}

	// Step 3: Create the contestant
	code, err := uniqueHashcode(db, &models.Contestant{})
	if err != nil {
		return nil, err
	}
	contestant := models.Contestant{
		Name:         strings.TrimSpace(input.Name),
		IC:           ic,
		Gender:       strings.ToUpper(input.Gender),
		Age:          input.Age,
		EduLevel:     eduLevel,
		ClassGrade:   input.ClassGrade,
		ClassName:    input.ClassName,
		Email:        input.Email,
		Phone:        input.Phone,
		Hashcode:     code,
		Status:       "ACTIVE",
		IsPPKI:       input.IsPPKI,
		ContingentID: contingentID,
		CreatedBy:    createdBy,
	}
	if err := db.Create(&contestant).Error; err != nil {
		return nil, fmt.Errorf("failed to create contestant: %w", err)
	}
	return &contestant, nil
}

// CreateTeam creates a team of a contingent for a contest. A zero maxMembers takes the default.
func CreateTeam(db *gorm.DB, team *models.Team) error {
	if team.MaxMembers == 0 {
		team.MaxMembers = models.DefaultTeamMaxMembers
	}
	if team.MaxMembers < models.MinTeamMembers || team.MaxMembers > models.MaxTeamMembers {
		return ErrInvalidTeamSize
	}

	code, err := uniqueHashcode(db, &models.Team{})
	if err != nil {
		return err
	}
	team.Hashcode = code
	if team.Status == "" {
		team.Status = "ACTIVE"
	}
	if err := db.Create(team).Error; err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// AddTeamMember adds a contestant of the same contingent to a team within its size limit
func AddTeamMember(db *gorm.DB, teamID, contestantID uint, role string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := db.Transaction(func(tx *gorm.DB) error {
		// Step 1: Load the team with its contest so the contest limit applies
		var team models.Team
		if err := tx.Preload("Contest").First(&team, teamID).Error; err != nil {
			return err
		}

		// Step 2: The contestant must belong to the same contingent
		var contestant models.Contestant
		if err := tx.First(&contestant, contestantID).Error; err != nil {
			return err
		}
		if contestant.ContingentID != team.ContingentID {
			return ErrMemberContingentMismatch
		}

		// Step 3: Refuse duplicates and a full team
		var count int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ? AND contestant_id = ?", teamID, contestantID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyTeamMember
		}
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
			return err
		}
		if int(count) >= team.EffectiveMaxMembers() {
			return ErrTeamFull
		}

		if role == "" {
			role = "MEMBER"
		}
		member = models.TeamMember{TeamID: teamID, ContestantID: contestantID, Role: role}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveTeamMember deletes a membership
func RemoveTeamMember(db *gorm.DB, teamID, contestantID uint) error {
	result := db.Where("team_id = ? AND contestant_id = ?", teamID, contestantID).Delete(&models.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RegisterTeam enters a team into an event contest with a PENDING status
func RegisterTeam(db *gorm.DB, eventContestID, teamID uint) (*models.EventContestTeam, error) {
	var eventContest models.EventContest
	if err := db.Preload("Event").First(&eventContest, eventContestID).Error; err != nil {
		return nil, err
	}
	if eventContest.Event == nil || !eventContest.IsActive || eventContest.Event.Status != models.EventStatusOpen {
		return nil, ErrRegistrationClosed
	}

	var team models.Team
	if err := db.First(&team, teamID).Error; err != nil {
		return nil, err
	}
	if team.ContestID != eventContest.ContestID {
		return nil, ErrTeamContestMismatch
	}

	var count int64
	if err := db.Model(&models.EventContestTeam{}).
		Where("event_contest_id = ? AND team_id = ?", eventContestID, teamID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRegistered
	}

	if eventContest.MaxParticipants != nil && *eventContest.MaxParticipants > 0 {
		if err := db.Model(&models.EventContestTeam{}).
			Where("event_contest_id = ? AND status <> ?", eventContestID, models.RegistrationRejected).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if int(count) >= *eventContest.MaxParticipants {
			return nil, ErrEventContestFull
		}
	}

	registration := models.EventContestTeam{
		EventContestID: eventContestID,
		TeamID:         teamID,
		Status:         models.RegistrationPending,
	}
	if err := db.Create(&registration).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

// SetRegistrationStatus changes the status of a team registration
func SetRegistrationStatus(db *gorm.DB, registrationID uint, status string) error {
	switch status {
	case models.RegistrationPending, models.RegistrationApproved, models.RegistrationAccepted,
		models.RegistrationApprovedSpecial, models.RegistrationRejected:
	default:
		return ErrInvalidRegistrationStatus
	}
	result := db.Model(&models.EventContestTeam{}).Where("id = ?", registrationID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

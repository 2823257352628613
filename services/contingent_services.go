package services

import (
	"errors"
	"fmt"

	"techlympics/models"

	"gorm.io/gorm"
)

var (
	ErrNotContingentManager = errors.New("user does not manage this contingent")
	ErrContingentExists     = errors.New("a contingent already exists for this institution")
	ErrAlreadyManager       = errors.New("user already manages this contingent")
	ErrRequestPending       = errors.New("a request for this contingent is already pending")
	ErrRequestNotPending    = errors.New("request has already been reviewed")
	ErrOwnerCannotBeRemoved = errors.New("the contingent owner cannot be removed")
)

// GetManagedContingent returns the contingent but errors when the user does not manage it
func GetManagedContingent(db *gorm.DB, userID, contingentID uint) (*models.Contingent, error) {
	var contingent models.Contingent
	result := db.Raw(`
		SELECT DISTINCT c.*
		FROM contingents c
		JOIN contingent_managers cm ON cm.contingent_id = c.id
		WHERE cm.user_id = ? AND c.id = ?
	`, userID, contingentID).Scan(&contingent)

	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	if contingent.ID == 0 {
		return nil, ErrNotContingentManager
	}
	return &contingent, nil
}

// ManagedContingentIDs lists the contingents a participant manages
func ManagedContingentIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.ContingentManager{}).Where("user_id = ?", userID).Pluck("contingent_id", &ids).Error
	return ids, err
}

// CreateContingent creates a contingent owned by the user. A school or higher institution
// may only have one contingent.
func CreateContingent(db *gorm.DB, contingent *models.Contingent, ownerID uint) error {
	// Step 1: Refuse a second contingent for the same institution
	var count int64
	query := db.Model(&models.Contingent{})
	switch {
	case contingent.SchoolID != nil:
		query = query.Where("school_id = ?", *contingent.SchoolID)
	case contingent.HigherInstitutionID != nil:
		query = query.Where("higher_institution_id = ?", *contingent.HigherInstitutionID)
	default:
		query = query.Where("LOWER(name) = LOWER(?)", contingent.Name)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return ErrContingentExists
	}

	// Step 2: Create the contingent and its owner in one transaction
	contingent.CreatedBy = &ownerID
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contingent).Error; err != nil {
			return fmt.Errorf("failed to create contingent: %w", err)
		}
		manager := models.ContingentManager{UserID: ownerID, ContingentID: contingent.ID, IsOwner: true}
		if err := tx.Create(&manager).Error; err != nil {
			return fmt.Errorf("failed to add contingent owner: %w", err)
		}
		return nil
	})
}

// RequestContingentAccess records a participant's request to help manage a contingent
func RequestContingentAccess(db *gorm.DB, userID, contingentID uint) (*models.ContingentRequest, error) {
	var count int64
	if err := db.Model(&models.ContingentManager{}).
		Where("user_id = ? AND contingent_id = ?", userID, contingentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyManager
	}

	if err := db.Model(&models.ContingentRequest{}).
		Where("user_id = ? AND contingent_id = ? AND status = ?", userID, contingentID, models.RequestStatusPending).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrRequestPending
	}

	request := models.ContingentRequest{UserID: userID, ContingentID: contingentID, Status: models.RequestStatusPending}
	if err := db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ReviewContingentRequest approves or rejects a pending request; approval adds the requester as a manager
func ReviewContingentRequest(db *gorm.DB, requestID uint, approve bool) (*models.ContingentRequest, error) {
	var request models.ContingentRequest
	if err := db.First(&request, requestID).Error; err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	status := models.RequestStatusRejected
	if approve {
		status = models.RequestStatusApproved
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Update("status", status).Error; err != nil {
			return err
		}
		if !approve {
			return nil
		}
		manager := models.ContingentManager{UserID: request.UserID, ContingentID: request.ContingentID}
		return tx.Where(models.ContingentManager{UserID: request.UserID, ContingentID: request.ContingentID}).
			FirstOrCreate(&manager).Error
	})
	if err != nil {
		return nil, err
	}
	request.Status = status
	return &request, nil
}

// RemoveContingentManager removes a non owner manager from a contingent
func RemoveContingentManager(db *gorm.DB, contingentID, userID uint) error {
	var manager models.ContingentManager
	if err := db.Where("contingent_id = ? AND user_id = ?", contingentID, userID).First(&manager).Error; err != nil {
		return err
	}
	if manager.IsOwner {
		return ErrOwnerCannotBeRemoved
	}
	return db.Delete(&manager).Error
}

// CanManageContingent reports whether a user may change a contingent: organizers with
// participant rights always can, participants only for contingents they manage
func CanManageContingent(db *gorm.DB, user *models.User, contingentID uint) bool {
	if user.HasRole(models.RoleOperator, models.RoleParticipantsManager) {
		return true
	}
	_, err := GetManagedContingent(db, user.ID, contingentID)
	return err == nil
}

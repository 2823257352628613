package services

import (
	"errors"
	"fmt"
	"time"

	"techlympics/metrics"
	"techlympics/models"
	"techlympics/utils"

	"gorm.io/gorm"
)

// CheckInLeadTime is how long before the event start check-in opens
const CheckInLeadTime = 2 * time.Hour

var (
	ErrEndpointNotFound      = errors.New("invalid attendance endpoint or event not found")
	ErrAttendanceNotOpen     = errors.New("attendance not available")
	ErrContestantCode        = errors.New("this QR code belongs to a contestant, only manager codes can be used for bulk check-in")
	ErrAttendanceCodeUnknown = errors.New("code not found in attendance records for this event")
	ErrAlreadyCheckedIn      = errors.New("already checked in")
)

// CheckInResult describes a successful contingent check-in
type CheckInResult struct {
	ContingentID       uint      `json:"contingentId"`
	Name               string    `json:"name"`
	LogoUrl            string    `json:"logoUrl"`
	Institution        string    `json:"institution"`
	CheckedInAt        time.Time `json:"checkedInAt"`
	ManagersUpdated    int64     `json:"managersUpdated"`
	ContestantsUpdated int64     `json:"contestantsUpdated"`
	TeamsUpdated       int64     `json:"teamsUpdated"`
	TotalUpdated       int64     `json:"totalUpdated"`
}

// CheckInWindow returns the period attendance can be taken for an event
func CheckInWindow(event *models.Event) (time.Time, time.Time) {
	return event.StartDate.Add(-CheckInLeadTime), event.EndDate
}

// CheckIn marks the whole contingent of a manager hashcode present for the event
func CheckIn(db *gorm.DB, eventID uint, endpointHash, hashcode string, now time.Time) (*CheckInResult, error) {
	var endpoint models.AttendanceEndpoint
	result := db.Preload("Event").Where("event_id = ? AND endpoint_hash = ?", eventID, endpointHash).Limit(1).Find(&endpoint)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || endpoint.Event == nil {
		metrics.CheckIns.WithLabelValues("endpoint_not_found").Inc()
		return nil, ErrEndpointNotFound
	}

	opens, closes := CheckInWindow(endpoint.Event)
	if now.Before(opens) || now.After(closes) {
		metrics.CheckIns.WithLabelValues("closed").Inc()
		return nil, fmt.Errorf("%w: attendance is only available from %s until %s",
			ErrAttendanceNotOpen, opens.Format(time.RFC3339), closes.Format(time.RFC3339))
	}

	var manager models.AttendanceManager
	result = db.Where("event_id = ? AND hashcode = ?", eventID, hashcode).Limit(1).Find(&manager)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.AttendanceContestant{}).
			Where("event_id = ? AND (hashcode = ? OR ic = ?)", eventID, hashcode, hashcode).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			metrics.CheckIns.WithLabelValues("contestant_code").Inc()
			return nil, ErrContestantCode
		}
		metrics.CheckIns.WithLabelValues("unknown_code").Inc()
		return nil, ErrAttendanceCodeUnknown
	}

	if manager.AttendanceStatus == models.AttendancePresent {
		metrics.CheckIns.WithLabelValues("duplicate").Inc()
		at := ""
		if manager.AttendanceDate != nil {
			at = manager.AttendanceDate.Format(time.RFC3339)
		}
		return nil, fmt.Errorf("%w: this contingent has already been checked in at %s", ErrAlreadyCheckedIn, at)
	}

	present := map[string]interface{}{
		"attendance_status": models.AttendancePresent,
		"attendance_date":   now,
		"attendance_time":   now,
	}

	res := &CheckInResult{ContingentID: manager.ContingentID, CheckedInAt: now}
	err := db.Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.AttendanceManager{}).
			Where("event_id = ? AND contingent_id = ?", eventID, manager.ContingentID).Updates(present)
		if update.Error != nil {
			return update.Error
		}
		res.ManagersUpdated = update.RowsAffected

		update = tx.Model(&models.AttendanceContestant{}).
			Where("event_id = ? AND contingent_id = ?", eventID, manager.ContingentID).Updates(present)
		if update.Error != nil {
			return update.Error
		}
		res.ContestantsUpdated = update.RowsAffected

		update = tx.Model(&models.AttendanceTeam{}).
			Where("event_id = ? AND contingent_id = ?", eventID, manager.ContingentID).Updates(present)
		if update.Error != nil {
			return update.Error
		}
		res.TeamsUpdated = update.RowsAffected
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	res.TotalUpdated = res.ManagersUpdated + res.ContestantsUpdated

	var contingent models.Contingent
	if err := db.Preload("School").Preload("HigherInstitution").Limit(1).Find(&contingent, manager.ContingentID).Error; err == nil {
		res.Name = contingent.Name
		res.LogoUrl = contingent.LogoUrl
		switch {
		case contingent.School != nil:
			res.Institution = contingent.School.Name
		case contingent.HigherInstitution != nil:
			res.Institution = contingent.HigherInstitution.Name
		}
	}
	if res.Name == "" {
		res.Name = "Unknown Contingent"
	}
	if res.Institution == "" {
		res.Institution = "Unknown Institution"
	}

	metrics.CheckIns.WithLabelValues("success").Inc()
	return res, nil
}

// SyncResult counts the attendance rows created by a sync
type SyncResult struct {
	Teams       int `json:"teams"`
	Contestants int `json:"contestants"`
	Managers    int `json:"managers"`
}

// uniqueHashcode draws hashcodes until one is unused in the table of model
func uniqueHashcode(tx *gorm.DB, model interface{}) (string, error) {
	for i := 0; i < 10; i++ {
		code := utils.GenerateHashcode()
		var count int64
		if err := tx.Model(model).Where("hashcode = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique hashcode")
}

// SyncEventAttendance creates missing attendance rows for every approved team registered to the event,
// their members and the managers of their contingents. Existing rows are left untouched.
func SyncEventAttendance(db *gorm.DB, eventID uint) (*SyncResult, error) {
	var registrations []models.EventContestTeam
	err := db.Joins("JOIN event_contests ON event_contests.id = event_contest_teams.event_contest_id").
		Where("event_contests.event_id = ? AND event_contest_teams.status IN ?", eventID, models.ApprovedRegistrationStatuses).
		Preload("Team.Members.Contestant").
		Find(&registrations).Error
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}

	result := &SyncResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		contingents := map[uint]bool{}

		for _, registration := range registrations {
			team := registration.Team
			if team == nil {
				continue
			}
			contingents[team.ContingentID] = true

			var existing int64
			if err := tx.Model(&models.AttendanceTeam{}).Where("event_id = ? AND team_id = ?", eventID, team.ID).Count(&existing).Error; err != nil {
				return err
			}
			if existing == 0 {
				code, err := uniqueHashcode(tx, &models.AttendanceTeam{})
				if err != nil {
					return err
				}
				row := models.AttendanceTeam{
					EventID:          eventID,
					TeamID:           team.ID,
					EventContestID:   registration.EventContestID,
					ContingentID:     team.ContingentID,
					Hashcode:         code,
					AttendanceStatus: models.AttendanceNotPresent,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				result.Teams++
			}

			for _, member := range team.Members {
				if member.Contestant == nil {
					continue
				}
				if err := tx.Model(&models.AttendanceContestant{}).
					Where("event_id = ? AND contestant_id = ?", eventID, member.ContestantID).Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					continue
				}
				code, err := uniqueHashcode(tx, &models.AttendanceContestant{})
				if err != nil {
					return err
				}
				teamID := team.ID
				row := models.AttendanceContestant{
					EventID:          eventID,
					ContestantID:     member.ContestantID,
					ContingentID:     team.ContingentID,
					TeamID:           &teamID,
					IC:               member.Contestant.IC,
					Hashcode:         code,
					AttendanceStatus: models.AttendanceNotPresent,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				result.Contestants++
			}
		}

		for contingentID := range contingents {
			var managers []models.ContingentManager
			if err := tx.Where("contingent_id = ?", contingentID).Find(&managers).Error; err != nil {
				return err
			}
			for _, manager := range managers {
				var existing int64
				if err := tx.Model(&models.AttendanceManager{}).
					Where("event_id = ? AND manager_id = ?", eventID, manager.UserID).Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					continue
				}
				code, err := uniqueHashcode(tx, &models.AttendanceManager{})
				if err != nil {
					return err
				}
				row := models.AttendanceManager{
					EventID:          eventID,
					ManagerID:        manager.UserID,
					ContingentID:     contingentID,
					Hashcode:         code,
					AttendanceStatus: models.AttendanceNotPresent,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				result.Managers++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sync attendance: %w", err)
	}
	return result, nil
}

// AttendanceCount is the present/total pair of one category
type AttendanceCount struct {
	Total   int64 `json:"total"`
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
}

// ContingentAttendance is the per contingent breakdown of the statistics
type ContingentAttendance struct {
	ContingentID   uint   `json:"contingentId"`
	ContingentName string `json:"contingentName"`
	Contestants    int64  `json:"contestants"`
	Present        int64  `json:"present"`
}

type AttendanceStatistics struct {
	Managers    AttendanceCount        `json:"managers"`
	Contestants AttendanceCount        `json:"contestants"`
	Teams       AttendanceCount        `json:"teams"`
	Contingents []ContingentAttendance `json:"contingents"`
}

func countAttendance(db *gorm.DB, model interface{}, eventID uint) (AttendanceCount, error) {
	var c AttendanceCount
	if err := db.Model(model).Where("event_id = ?", eventID).Count(&c.Total).Error; err != nil {
		return c, err
	}
	if err := db.Model(model).Where("event_id = ? AND attendance_status = ?", eventID, models.AttendancePresent).Count(&c.Present).Error; err != nil {
		return c, err
	}
	c.Absent = c.Total - c.Present
	return c, nil
}

// GetAttendanceStatistics summarises present and absent attendees of an event
func GetAttendanceStatistics(db *gorm.DB, eventID uint) (*AttendanceStatistics, error) {
	stats := &AttendanceStatistics{}
	var err error
	if stats.Managers, err = countAttendance(db, &models.AttendanceManager{}, eventID); err != nil {
		return nil, err
	}
	if stats.Contestants, err = countAttendance(db, &models.AttendanceContestant{}, eventID); err != nil {
		return nil, err
	}
	if stats.Teams, err = countAttendance(db, &models.AttendanceTeam{}, eventID); err != nil {
		return nil, err
	}

	err = db.Model(&models.AttendanceContestant{}).
		Select(`attendance_contestants.contingent_id AS contingent_id, contingents.name AS contingent_name,
			COUNT(*) AS contestants,
			SUM(CASE WHEN attendance_contestants.attendance_status = ? THEN 1 ELSE 0 END) AS present`, models.AttendancePresent).
		Joins("JOIN contingents ON contingents.id = attendance_contestants.contingent_id").
		Where("attendance_contestants.event_id = ?", eventID).
		Group("attendance_contestants.contingent_id, contingents.name").
		Order("contingents.name").
		Scan(&stats.Contingents).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// MarkAttendance sets the status of attendance rows by id for one kind of attendee
func MarkAttendance(db *gorm.DB, eventID uint, kind string, ids []uint, present bool, now time.Time) (int64, error) {
	var model interface{}
	switch kind {
	case "manager":
		model = &models.AttendanceManager{}
	case "contestant":
		model = &models.AttendanceContestant{}
	case "team":
		model = &models.AttendanceTeam{}
	default:
		return 0, fmt.Errorf("unknown attendance kind %q", kind)
	}

	updates := map[string]interface{}{
		"attendance_status": models.AttendanceNotPresent,
		"attendance_date":   nil,
		"attendance_time":   nil,
	}
	if present {
		updates["attendance_status"] = models.AttendancePresent
		updates["attendance_date"] = now
		updates["attendance_time"] = now
	}

	result := db.Model(model).Where("event_id = ? AND id IN ?", eventID, ids).Updates(updates)
	return result.RowsAffected, result.Error
}

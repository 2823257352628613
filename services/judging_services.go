package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"techlympics/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidJudge          = errors.New("invalid judge hashcode")
	ErrScoreNotFound         = errors.New("score record not found")
	ErrScoreNotInJudgeScope  = errors.New("score does not belong to this judge's contest/event")
	ErrSessionNotInProgress  = errors.New("cannot update scores for a completed judging session")
	ErrScoreOutOfRange       = errors.New("score is outside the criterion range")
	ErrNoJudgingTemplate     = errors.New("no judging template is assigned to this contest")
	ErrTeamNotInEventContest = errors.New("team is not registered for this event contest")
)

// ScoreUpdate is one criterion score sent by a judge
type ScoreUpdate struct {
	ScoreID              uint            `json:"scoreId" binding:"required"`
	Score                decimal.Decimal `json:"score"`
	Comments             *string         `json:"comments"`
	SelectedDiscreteText *string         `json:"selectedDiscreteText"`
	StartTime            *time.Time      `json:"startTime"`
	EndTime              *time.Time      `json:"endTime"`
	TotalTime            *int64          `json:"totalTime"`
}

// ResolveJudgingTemplate returns the template of the event contest, or the default template
func ResolveJudgingTemplate(db *gorm.DB, eventContest *models.EventContest) (*models.JudgingTemplate, error) {
	var template models.JudgingTemplate
	query := db.Preload("Criteria", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })

	var result *gorm.DB
	if eventContest.JudgingTemplateID != nil {
		result = query.Where("id = ?", *eventContest.JudgingTemplateID).Limit(1).Find(&template)
	} else {
		result = query.Where("is_default = ?", true).Order("id").Limit(1).Find(&template)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoJudgingTemplate
	}
	return &template, nil
}

// StartJudgingSession opens (or returns the existing) session of an attendance team and
// snapshots the template criteria into empty scores
func StartJudgingSession(db *gorm.DB, eventContestID, attendanceTeamID uint, judgeID, judgeEndpointID *uint) (*models.JudgingSession, error) {
	var eventContest models.EventContest
	if err := db.First(&eventContest, eventContestID).Error; err != nil {
		return nil, err
	}

	var attendanceTeam models.AttendanceTeam
	if err := db.First(&attendanceTeam, attendanceTeamID).Error; err != nil {
		return nil, err
	}
	if attendanceTeam.EventID != eventContest.EventID {
		return nil, ErrTeamNotInEventContest
	}
	var registered int64
	if err := db.Model(&models.EventContestTeam{}).
		Where("event_contest_id = ? AND team_id = ?", eventContestID, attendanceTeam.TeamID).
		Count(&registered).Error; err != nil {
		return nil, err
	}
	if registered == 0 {
		return nil, ErrTeamNotInEventContest
	}

	var existing models.JudgingSession
	result := db.Preload("Scores", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("event_contest_id = ? AND attendance_team_id = ?", eventContestID, attendanceTeamID).
		Limit(1).Find(&existing)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return &existing, nil
	}

	template, err := ResolveJudgingTemplate(db, &eventContest)
	if err != nil {
		return nil, err
	}

	session := models.JudgingSession{
		JudgeID:          judgeID,
		JudgeEndpointID:  judgeEndpointID,
		AttendanceTeamID: attendanceTeamID,
		EventContestID:   eventContestID,
		Status:           models.SessionInProgress,
		StartTime:        time.Now(),
	}
	for _, criterion := range template.Criteria {
		session.Scores = append(session.Scores, models.JudgingSessionScore{
			CriterionID:     criterion.ID,
			CriterionName:   criterion.Name,
			CriterionWeight: criterion.Weight,
			CriterionType:   criterion.EvaluationType,
			MaxScore:        criterion.MaxScore,
		})
	}

	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create judging session: %w", err)
	}
	return &session, nil
}

// SessionTotal sums every scored criterion of a session
func SessionTotal(scores []models.JudgingSessionScore) decimal.Decimal {
	total := decimal.Zero
	for _, s := range scores {
		if s.Score.Valid {
			total = total.Add(s.Score.Decimal)
		}
	}
	return total
}

func recomputeSessionTotal(tx *gorm.DB, sessionID uint) (decimal.Decimal, error) {
	var scores []models.JudgingSessionScore
	if err := tx.Where("judging_session_id = ?", sessionID).Find(&scores).Error; err != nil {
		return decimal.Zero, err
	}
	total := SessionTotal(scores)
	err := tx.Model(&models.JudgingSession{}).Where("id = ?", sessionID).
		Update("total_score", decimal.NullDecimal{Decimal: total, Valid: true}).Error
	return total, err
}

// UpdateJudgeScores applies a batch of score updates made through a judge endpoint.
// Every score must belong to the endpoint's event and contest and to an in progress session.
func UpdateJudgeScores(db *gorm.DB, hashcode string, updates []ScoreUpdate) ([]uint, error) {
	var endpoint models.JudgeEndpoint
	result := db.Where("hashcode = ?", hashcode).Limit(1).Find(&endpoint)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidJudge
	}

	touched := map[uint]bool{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			var score models.JudgingSessionScore
			res := tx.Where("id = ?", update.ScoreID).Limit(1).Find(&score)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %d", ErrScoreNotFound, update.ScoreID)
			}

			var session models.JudgingSession
			if err := tx.Preload("EventContest").First(&session, score.JudgingSessionID).Error; err != nil {
				return err
			}
			if session.EventContest == nil ||
				session.EventContest.EventID != endpoint.EventID ||
				session.EventContest.ContestID != endpoint.ContestID {
				return fmt.Errorf("%w: %d", ErrScoreNotInJudgeScope, update.ScoreID)
			}
			if session.Status != models.SessionInProgress {
				return ErrSessionNotInProgress
			}
			if score.CriterionType == models.EvaluationPoints &&
				(update.Score.IsNegative() || update.Score.GreaterThan(decimal.NewFromInt(int64(score.MaxScore)))) {
				return fmt.Errorf("%w: %s must be between 0 and %d", ErrScoreOutOfRange, score.CriterionName, score.MaxScore)
			}

			values := map[string]interface{}{
				"score": decimal.NullDecimal{Decimal: update.Score, Valid: true},
			}
			if update.Comments != nil {
				values["comments"] = *update.Comments
			}
			if update.SelectedDiscreteText != nil {
				values["selected_discrete_text"] = *update.SelectedDiscreteText
			}
			if update.StartTime != nil {
				values["start_time"] = *update.StartTime
			}
			if update.EndTime != nil {
				values["end_time"] = *update.EndTime
			}
			if update.TotalTime != nil {
				values["total_time"] = *update.TotalTime
			}
			if err := tx.Model(&score).Updates(values).Error; err != nil {
				return err
			}
			touched[score.JudgingSessionID] = true
		}

		for sessionID := range touched {
			if _, err := recomputeSessionTotal(tx, sessionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]uint, 0, len(touched))
	for id := range touched {
		sessions = append(sessions, id)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i] < sessions[j] })
	return sessions, nil
}

// CompleteJudgingSession recomputes the total and closes the session
func CompleteJudgingSession(db *gorm.DB, sessionID uint, comments string) (*models.JudgingSession, error) {
	var session models.JudgingSession
	if err := db.First(&session, sessionID).Error; err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrSessionNotInProgress
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := recomputeSessionTotal(tx, sessionID); err != nil {
			return err
		}
		values := map[string]interface{}{
			"status":   models.SessionCompleted,
			"end_time": time.Now(),
		}
		if comments != "" {
			values["comments"] = comments
		}
		return tx.Model(&models.JudgingSession{}).Where("id = ?", sessionID).Updates(values).Error
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Scores", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).First(&session, sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

type ScoreboardRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	LogoUrl string `json:"logoUrl,omitempty"`
}

// ScoreboardEntry is one team line of the scoreboard
type ScoreboardEntry struct {
	AttendanceTeamID uint             `json:"attendanceTeamId"`
	Team             ScoreboardRef    `json:"team"`
	Contingent       ScoreboardRef    `json:"contingent"`
	State            *ScoreboardRef   `json:"state"`
	TotalScore       *decimal.Decimal `json:"totalScore"`
	JudgingStatus    string           `json:"judgingStatus"`
	JudgingSessionID *uint            `json:"judgingSessionId"`
	Rank             int              `json:"rank"`
	EventContestID   uint             `json:"eventContestId"`
	ContestName      string           `json:"contestName"`
	AttendanceStatus string           `json:"attendanceStatus"`
}

type Scoreboard struct {
	Results         []ScoreboardEntry `json:"results"`
	TotalTeams      int               `json:"totalTeams"`
	TotalInProgress int               `json:"totalInProgress"`
	TotalCompleted  int               `json:"totalCompleted"`
	EventID         uint              `json:"eventId"`
	ContestID       uint              `json:"contestId"`
	ScopeArea       string            `json:"scopeArea"`
}

const judgingNotStarted = "NOT_STARTED"

// RankScoreboard orders scored teams first by total descending then team name and assigns ranks.
// Teams without a score get rank 0.
func RankScoreboard(entries []ScoreboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.TotalScore == nil) != (b.TotalScore == nil) {
			return a.TotalScore != nil
		}
		if a.TotalScore != nil && !a.TotalScore.Equal(*b.TotalScore) {
			return a.TotalScore.GreaterThan(*b.TotalScore)
		}
		return a.Team.Name < b.Team.Name
	})
	for i := range entries {
		if entries[i].TotalScore != nil {
			entries[i].Rank = i + 1
		} else {
			entries[i].Rank = 0
		}
	}
}

func contingentState(contingent *models.Contingent) *ScoreboardRef {
	if contingent == nil {
		return nil
	}
	if contingent.State != nil {
		return &ScoreboardRef{ID: contingent.State.ID, Name: contingent.State.Name}
	}
	if contingent.School != nil && contingent.School.State != nil {
		return &ScoreboardRef{ID: contingent.School.State.ID, Name: contingent.School.State.Name}
	}
	if contingent.HigherInstitution != nil && contingent.HigherInstitution.State != nil {
		return &ScoreboardRef{ID: contingent.HigherInstitution.State.ID, Name: contingent.HigherInstitution.State.Name}
	}
	return nil
}

// GetScoreboard builds the ranked scoreboard of a contest within an event, optionally for one state
func GetScoreboard(db *gorm.DB, eventID, contestID uint, stateID *uint) (*Scoreboard, error) {
	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		return nil, err
	}

	board := &Scoreboard{Results: []ScoreboardEntry{}, EventID: eventID, ContestID: contestID, ScopeArea: event.ScopeArea}

	var eventContest models.EventContest
	result := db.Preload("Contest").Where("event_id = ? AND contest_id = ?", eventID, contestID).Limit(1).Find(&eventContest)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return board, nil
	}

	var teams []models.AttendanceTeam
	err := db.Joins("JOIN event_contest_teams ON event_contest_teams.team_id = attendance_teams.team_id AND event_contest_teams.event_contest_id = ?", eventContest.ID).
		Where("attendance_teams.event_id = ?", eventID).
		Preload("Team").
		Preload("Contingent.State").
		Preload("Contingent.School.State").
		Preload("Contingent.HigherInstitution.State").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}

	var sessions []models.JudgingSession
	if err := db.Where("event_contest_id = ?", eventContest.ID).Find(&sessions).Error; err != nil {
		return nil, err
	}
	byTeam := make(map[uint]models.JudgingSession, len(sessions))
	for _, s := range sessions {
		byTeam[s.AttendanceTeamID] = s
	}

	contestName := ""
	if eventContest.Contest != nil {
		contestName = eventContest.Contest.Name
	}

	for _, at := range teams {
		state := contingentState(at.Contingent)
		if stateID != nil && (state == nil || state.ID != *stateID) {
			continue
		}

		entry := ScoreboardEntry{
			AttendanceTeamID: at.ID,
			State:            state,
			JudgingStatus:    judgingNotStarted,
			EventContestID:   eventContest.ID,
			ContestName:      contestName,
			AttendanceStatus: at.AttendanceStatus,
		}
		if at.Team != nil {
			entry.Team = ScoreboardRef{ID: at.Team.ID, Name: at.Team.Name}
		}
		if at.Contingent != nil {
			entry.Contingent = ScoreboardRef{ID: at.Contingent.ID, Name: at.Contingent.Name, LogoUrl: at.Contingent.LogoUrl}
		}
		if s, ok := byTeam[at.ID]; ok {
			id := s.ID
			entry.JudgingSessionID = &id
			entry.JudgingStatus = s.Status
			if s.TotalScore.Valid {
				total := s.TotalScore.Decimal
				entry.TotalScore = &total
			}
			switch s.Status {
			case models.SessionInProgress:
				board.TotalInProgress++
			case models.SessionCompleted:
				board.TotalCompleted++
			}
		}
		board.Results = append(board.Results, entry)
	}

	RankScoreboard(board.Results)
	board.TotalTeams = len(board.Results)
	return board, nil
}

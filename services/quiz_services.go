package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"techlympics/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrQuizNotEditable       = errors.New("quiz can only be modified while in created status")
	ErrQuizNotDeletable      = errors.New("only created or retracted quizzes can be deleted")
	ErrQuizInvalidTransition = errors.New("invalid quiz status transition")
	ErrQuizHasNoQuestions    = errors.New("quiz must have at least one question before publishing")
	ErrQuizNotAvailable      = errors.New("quiz not found or not available")
	ErrNoActiveAttempt       = errors.New("no active quiz attempt found")
	ErrQuizAlreadyCompleted  = errors.New("you have already completed this quiz")
)

// CanEditQuiz reports whether a quiz may be modified; retracting is allowed from any state handled by TransitionQuiz
func CanEditQuiz(quiz *models.Quiz, retracting bool) error {
	if retracting || quiz.Status == models.QuizCreated {
		return nil
	}
	return ErrQuizNotEditable
}

// CanDeleteQuiz reports whether a quiz may be removed
func CanDeleteQuiz(quiz *models.Quiz) error {
	if quiz.Status == models.QuizCreated || quiz.Status == models.QuizRetracted {
		return nil
	}
	return ErrQuizNotDeletable
}

var quizTransitions = map[string]map[string]bool{
	models.QuizCreated:   {models.QuizPublished: true},
	models.QuizPublished: {models.QuizRetracted: true, models.QuizEnded: true},
	models.QuizRetracted: {models.QuizPublished: true},
}

// TransitionQuiz moves a quiz to a new status: publish (created), retract (published),
// republish (retracted) or end (published)
func TransitionQuiz(db *gorm.DB, quiz *models.Quiz, to string) error {
	if !quizTransitions[quiz.Status][to] {
		return fmt.Errorf("%w: %s to %s", ErrQuizInvalidTransition, quiz.Status, to)
	}

	values := map[string]interface{}{"status": to}
	if to == models.QuizPublished {
		var count int64
		if err := db.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrQuizHasNoQuestions
		}
		now := time.Now()
		values["published_at"] = now
		quiz.PublishedAt = &now
	}

	if err := db.Model(quiz).Updates(values).Error; err != nil {
		return err
	}
	quiz.Status = to
	return nil
}

// SetQuizQuestions replaces the questions of a quiz and updates its total marks
func SetQuizQuestions(db *gorm.DB, quiz *models.Quiz, items []models.QuizQuestion) error {
	if err := CanEditQuiz(quiz, false); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		total := 0
		for i := range items {
			items[i].ID = 0
			items[i].QuizID = quiz.ID
			if items[i].Points <= 0 {
				items[i].Points = 1
			}
			if items[i].Order == 0 {
				items[i].Order = i + 1
			}
			total += items[i].Points
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		quiz.TotalMarks = total
		return tx.Model(quiz).Update("total_marks", total).Error
	})
}

// AnswerIsCorrect grades one answer: multiple selection needs the exact set of correct options,
// single selection and binary need exactly one option that is among the correct ones
func AnswerIsCorrect(answerType, answerCorrect string, selected []string) bool {
	correct := splitOptions(answerCorrect)

	if answerType == models.AnswerMultiple {
		got := append([]string(nil), selected...)
		for i := range got {
			got[i] = strings.TrimSpace(got[i])
		}
		sort.Strings(got)
		sort.Strings(correct)
		return strings.Join(got, ",") == strings.Join(correct, ",")
	}

	if len(selected) != 1 {
		return false
	}
	choice := strings.TrimSpace(selected[0])
	for _, c := range correct {
		if c == choice {
			return true
		}
	}
	return false
}

func splitOptions(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PercentageScore rounds total/max to a whole percentage; 0 when max is 0
func PercentageScore(total, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(max) * 100))
}

// StartQuizAttempt returns the contestant's started attempt or opens a new one
func StartQuizAttempt(db *gorm.DB, quizID uint, contestant *models.Contestant) (*models.QuizAttempt, error) {
	var quiz models.Quiz
	result := db.Where("id = ? AND status = ?", quizID, models.QuizPublished).Limit(1).Find(&quiz)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrQuizNotAvailable
	}

	var completed int64
	if err := db.Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND contestant_id = ? AND status = ?", quizID, contestant.ID, models.AttemptCompleted).
		Count(&completed).Error; err != nil {
		return nil, err
	}
	if completed > 0 {
		return nil, ErrQuizAlreadyCompleted
	}

	var attempt models.QuizAttempt
	result = db.Where("quiz_id = ? AND contestant_id = ? AND status = ?", quizID, contestant.ID, models.AttemptStarted).
		Limit(1).Find(&attempt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return &attempt, nil
	}

	attempt = models.QuizAttempt{
		QuizID:       quizID,
		ContestantID: contestant.ID,
		Status:       models.AttemptStarted,
		StartTime:    time.Now(),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// SubmittedAnswer is the options a contestant picked for one question
type SubmittedAnswer struct {
	QuestionID      uint     `json:"questionId" binding:"required"`
	SelectedOptions []string `json:"selectedOptions"`
}

type GradedAnswer struct {
	QuestionID      uint     `json:"questionId"`
	SelectedOptions []string `json:"selectedOptions"`
	IsCorrect       bool     `json:"isCorrect"`
	PointsEarned    int      `json:"pointsEarned"`
	MaxPoints       int      `json:"maxPoints"`
}

type QuizResult struct {
	QuizID          uint           `json:"quizId"`
	AttemptID       uint           `json:"attemptId"`
	ContestantID    uint           `json:"contestantId"`
	ContestantName  string         `json:"contestantName"`
	TotalScore      int            `json:"totalScore"`
	MaxScore        int            `json:"maxScore"`
	PercentageScore int            `json:"percentageScore"`
	CorrectAnswers  int            `json:"correctAnswers"`
	TotalQuestions  int            `json:"totalQuestions"`
	TimeUsed        int            `json:"timeUsed"`
	Answers         []GradedAnswer `json:"answers"`
	CompletedAt     time.Time      `json:"completedAt"`
}

// SubmitQuizAttempt grades the answers of a started attempt and completes it.
// Answers to questions outside the quiz are ignored.
func SubmitQuizAttempt(db *gorm.DB, quizID, attemptID uint, contestant *models.Contestant, answers []SubmittedAnswer, timeUsed int) (*QuizResult, error) {
	var quiz models.Quiz
	result := db.Preload("Questions.Question").Where("id = ? AND status = ?", quizID, models.QuizPublished).Limit(1).Find(&quiz)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrQuizNotAvailable
	}

	var attempt models.QuizAttempt
	result = db.Where("id = ? AND quiz_id = ? AND contestant_id = ? AND status = ?",
		attemptID, quizID, contestant.ID, models.AttemptStarted).Limit(1).Find(&attempt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoActiveAttempt
	}

	var otherCompleted int64
	if err := db.Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND contestant_id = ? AND status = ? AND id <> ?", quizID, contestant.ID, models.AttemptCompleted, attemptID).
		Count(&otherCompleted).Error; err != nil {
		return nil, err
	}
	if otherCompleted > 0 {
		return nil, ErrQuizAlreadyCompleted
	}

	byQuestion := make(map[uint]models.QuizQuestion, len(quiz.Questions))
	maxScore := 0
	for _, qq := range quiz.Questions {
		byQuestion[qq.QuestionID] = qq
		maxScore += qq.Points
	}

	res := &QuizResult{
		QuizID:         quizID,
		AttemptID:      attempt.ID,
		ContestantID:   contestant.ID,
		ContestantName: contestant.Name,
		MaxScore:       maxScore,
		TotalQuestions: len(quiz.Questions),
		TimeUsed:       timeUsed,
		Answers:        []GradedAnswer{},
	}
	for _, answer := range answers {
		qq, ok := byQuestion[answer.QuestionID]
		if !ok || qq.Question == nil {
			continue
		}
		correct := AnswerIsCorrect(qq.Question.AnswerType, qq.Question.AnswerCorrect, answer.SelectedOptions)
		points := 0
		if correct {
			points = qq.Points
			res.CorrectAnswers++
		}
		res.TotalScore += points
		selected := answer.SelectedOptions
		if selected == nil {
			selected = []string{}
		}
		res.Answers = append(res.Answers, GradedAnswer{
			QuestionID:      answer.QuestionID,
			SelectedOptions: selected,
			IsCorrect:       correct,
			PointsEarned:    points,
			MaxPoints:       qq.Points,
		})
	}
	res.PercentageScore = PercentageScore(res.TotalScore, maxScore)
	res.CompletedAt = time.Now()

	if err := db.Transaction(func(tx *gorm.DB) error {
		return completeAttempt(tx, &attempt, res)
	}); err != nil {
		if errors.Is(err, ErrNoActiveAttempt) {
			return nil, err
		}
		return nil, fmt.Errorf("save quiz attempt: %w", err)
	}
	return res, nil
}

// completeAttempt marks a started attempt completed and stores its graded
// answers. A concurrent submit that already completed the attempt leaves
// no rows to update and yields ErrNoActiveAttempt.
func completeAttempt(tx *gorm.DB, attempt *models.QuizAttempt, res *QuizResult) error {
	update := tx.Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.AttemptStarted).
		Updates(map[string]interface{}{
			"status":     models.AttemptCompleted,
			"score":      res.TotalScore,
			"end_time":   res.CompletedAt,
			"time_taken": res.TimeUsed,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return ErrNoActiveAttempt
	}
	for _, graded := range res.Answers {
		selected, err := json.Marshal(graded.SelectedOptions)
		if err != nil {
			return err
		}
		row := models.QuizAnswer{
			AttemptID:       attempt.ID,
			QuestionID:      graded.QuestionID,
			SelectedOptions: datatypes.JSON(selected),
			IsCorrect:       graded.IsCorrect,
			PointsEarned:    graded.PointsEarned,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// QuizResultRow is one completed attempt on the results board
type QuizResultRow struct {
	Rank           int        `json:"rank"`
	AttemptID      uint       `json:"attemptId"`
	ContestantID   uint       `json:"contestantId"`
	ContestantName string     `json:"contestantName"`
	ContingentName string     `json:"contingentName"`
	Score          int        `json:"score"`
	MaxScore       int        `json:"maxScore"`
	Percentage     int        `json:"percentage"`
	TimeTaken      int        `json:"timeTaken"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// QuizResults ranks the completed attempts of a quiz by score, then by time taken
func QuizResults(db *gorm.DB, quiz *models.Quiz) ([]QuizResultRow, error) {
	var attempts []models.QuizAttempt
	if err := db.Preload("Contestant.Contingent").
		Where("quiz_id = ? AND status = ?", quiz.ID, models.AttemptCompleted).
		Order("score DESC, time_taken ASC, end_time ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	rows := make([]QuizResultRow, 0, len(attempts))
	for i, a := range attempts {
		row := QuizResultRow{
			Rank:         i + 1,
			AttemptID:    a.ID,
			ContestantID: a.ContestantID,
			MaxScore:     quiz.TotalMarks,
			CompletedAt:  a.EndTime,
		}
		if a.Score != nil {
			row.Score = *a.Score
		}
		if a.TimeTaken != nil {
			row.TimeTaken = *a.TimeTaken
		}
		if a.Contestant != nil {
			row.ContestantName = a.Contestant.Name
			if a.Contestant.Contingent != nil {
				row.ContingentName = a.Contestant.Contingent.Name
			}
		}
		row.Percentage = PercentageScore(row.Score, row.MaxScore)
		rows = append(rows, row)
	}
	return rows, nil
}

package quizzes

import (
	"encoding/json"
	"net/http"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// arenaContestant resolves the active contestant of the hashcode
func arenaContestant(c *gin.Context) (*models.Contestant, bool) {
	var contestant models.Contestant
	result := database.DB.Where("hashcode = ? AND status = ?", c.Param("hashcode"), "ACTIVE").Limit(1).Find(&contestant)
	if result.Error != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return nil, false
	}
	if result.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, ErrContestantNotFound)
		return nil, false
	}
	return &contestant, true
}

func toArenaQuiz(quiz *models.Quiz, questions int) ArenaQuiz {
	return ArenaQuiz{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		TargetGroup:    quiz.TargetGroup,
		Duration:       quiz.Duration,
		TotalMarks:     quiz.TotalMarks,
		TotalQuestions: questions,
		PublishedAt:    quiz.PublishedAt,
	}
}

// GetArenaQuizzes lists the published quizzes with the contestant's attempt on each
// @Summary List quizzes for a contestant
// @Tags Arena
// @Produce json
// @Param hashcode path string true "Contestant hashcode"
// @Success 200 {array} ArenaQuiz
// @Failure 404 {object} map[string]string
// @Router /arena/contestants/{hashcode}/quizzes [get]
func GetArenaQuizzes(c *gin.Context) {
	contestant, ok := arenaContestant(c)
	if !ok {
		return
	}

	var quizzes []models.Quiz
	if err := database.DB.Preload("Questions").Where("status = ?", models.QuizPublished).
		Order("published_at DESC, id DESC").Find(&quizzes).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}

	var attempts []models.QuizAttempt
	if err := database.DB.Where("contestant_id = ?", contestant.ID).Order("id").Find(&attempts).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	latest := make(map[uint]models.QuizAttempt, len(attempts))
	for _, a := range attempts {
		if prev, ok := latest[a.QuizID]; ok && prev.Status == models.AttemptCompleted {
			continue
		}
		latest[a.QuizID] = a
	}

	out := make([]ArenaQuiz, 0, len(quizzes))
	for i := range quizzes {
		view := toArenaQuiz(&quizzes[i], len(quizzes[i].Questions))
		if a, ok := latest[quizzes[i].ID]; ok {
			view.AttemptStatus = a.Status
			view.Score = a.Score
		}
		out = append(out, view)
	}
	c.JSON(http.StatusOK, out)
}

// StartQuiz opens or resumes the contestant's attempt and returns the questions without answers
// @Summary Start a quiz
// @Tags Arena
// @Produce json
// @Param hashcode path string true "Contestant hashcode"
// @Param quizId path int true "Quiz ID"
// @Success 200 {object} StartResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /arena/contestants/{hashcode}/quizzes/{quizId}/start [post]
func StartQuiz(c *gin.Context) {
	contestant, ok := arenaContestant(c)
	if !ok {
		return
	}
	quizID, ok := utils.ParseUintParam(c, "quizId")
	if !ok {
		return
	}

	attempt, err := services.StartQuizAttempt(database.DB, quizID, contestant)
	if err != nil {
		quizError(c, err, ErrFailedToStart)
		return
	}

	var quiz models.Quiz
	if err := database.DB.Preload("Questions", orderedQuestions).Preload("Questions.Question").First(&quiz, quizID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToStart)
		return
	}

	questions := make([]ArenaQuestion, 0, len(quiz.Questions))
	for _, qq := range quiz.Questions {
		if qq.Question == nil {
			continue
		}
		options := []models.AnswerOption{}
		if len(qq.Question.AnswerOptions) > 0 {
			if err := json.Unmarshal(qq.Question.AnswerOptions, &options); err != nil {
				logger.Log.WithError(err).WithField("question_id", qq.QuestionID).Warn("Invalid answer options")
			}
		}
		questions = append(questions, ArenaQuestion{
			ID:            qq.QuestionID,
			Order:         qq.Order,
			Points:        qq.Points,
			Question:      qq.Question.Question,
			QuestionImage: qq.Question.QuestionImage,
			AnswerType:    qq.Question.AnswerType,
			AnswerOptions: options,
		})
	}

	c.JSON(http.StatusOK, StartResponse{
		Attempt:   *attempt,
		Quiz:      toArenaQuiz(&quiz, len(questions)),
		Questions: questions,
	})
}

// SubmitQuiz grades and completes the contestant's attempt
// @Summary Submit a quiz
// @Tags Arena
// @Accept json
// @Produce json
// @Param hashcode path string true "Contestant hashcode"
// @Param quizId path int true "Quiz ID"
// @Param answers body SubmitRequest true "Answers"
// @Success 200 {object} services.QuizResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /arena/contestants/{hashcode}/quizzes/{quizId}/submit [post]
func SubmitQuiz(c *gin.Context) {
	contestant, ok := arenaContestant(c)
	if !ok {
		return
	}
	quizID, ok := utils.ParseUintParam(c, "quizId")
	if !ok {
		return
	}
	var req SubmitRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	result, err := services.SubmitQuizAttempt(database.DB, quizID, req.AttemptID, contestant, req.Answers, req.TimeUsed)
	if err != nil {
		quizError(c, err, ErrFailedToSubmit)
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"quiz_id":       quizID,
		"contestant_id": contestant.ID,
		"score":         result.TotalScore,
		"max_score":     result.MaxScore,
	}).Info("Quiz submitted")
	c.JSON(http.StatusOK, result)
}

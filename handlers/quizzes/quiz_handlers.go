package quizzes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/logger"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func orderedQuestions(tx *gorm.DB) *gorm.DB {
	return tx.Order("order_index, id")
}

func findQuiz(c *gin.Context, withQuestions bool) (*models.Quiz, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	query := database.DB
	if withQuestions {
		query = query.Preload("Questions", orderedQuestions).Preload("Questions.Question")
	}
	var quiz models.Quiz
	if err := query.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrQuizNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &quiz, true
}

// quizError maps service errors onto a status and message
func quizError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrQuizNotEditable), errors.Is(err, services.ErrQuizNotDeletable),
		errors.Is(err, services.ErrQuizAlreadyCompleted):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrQuizInvalidTransition), errors.Is(err, services.ErrQuizHasNoQuestions),
		errors.Is(err, services.ErrNoActiveAttempt):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrQuizNotAvailable):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		logger.Log.WithError(err).Error(fallback)
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}

// GetQuizzes lists quizzes
// @Summary List quizzes
// @Tags Quizzes
// @Produce json
// @Param status query string false "Status"
// @Param targetGroup query string false "Target group"
// @Param search query string false "Title"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/quizzes [get]
// @Security Bearer
func GetQuizzes(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.Quiz{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if group := c.Query("targetGroup"); group != "" {
		query = query.Where("target_group = ?", group)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	quizzes := []models.Quiz{}
	if err := query.Scopes(pagination.Scope).Order("created_at DESC, id DESC").Find(&quizzes).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, quizzes, pagination.WithTotal(total))
}

// GetQuiz returns a quiz with its ordered questions
// @Summary Get a quiz
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} map[string]string
// @Router /organizer/quizzes/{id} [get]
// @Security Bearer
func GetQuiz(c *gin.Context) {
	quiz, ok := findQuiz(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// CreateQuiz creates a quiz in created status
// @Summary Create a quiz
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param quiz body QuizRequest true "Quiz"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} map[string]string
// @Router /organizer/quizzes [post]
// @Security Bearer
func CreateQuiz(c *gin.Context) {
	var req QuizRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	quiz := models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		TargetGroup: req.TargetGroup,
		Duration:    req.Duration,
		Status:      models.QuizCreated,
	}
	if quiz.Duration == 0 {
		quiz.Duration = 30
	}
	if user, err := middleware.GetUserFromRequest(c); err == nil {
		quiz.CreatedBy = user.ID
	}
	if err := database.DB.Create(&quiz).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// UpdateQuiz changes the details of a quiz still in created status
// @Summary Update a quiz
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param quiz body QuizRequest true "Quiz"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/quizzes/{id} [put]
// @Security Bearer
func UpdateQuiz(c *gin.Context) {
	quiz, ok := findQuiz(c, false)
	if !ok {
		return
	}
	var req QuizRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if err := services.CanEditQuiz(quiz, false); err != nil {
		quizError(c, err, ErrFailedToSave)
		return
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.TargetGroup = req.TargetGroup
	if req.Duration > 0 {
		quiz.Duration = req.Duration
	}
	if err := database.DB.Omit("Questions").Save(quiz).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz removes a created or retracted quiz with its questions and attempts
// @Summary Delete a quiz
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/quizzes/{id} [delete]
// @Security Bearer
func DeleteQuiz(c *gin.Context) {
	quiz, ok := findQuiz(c, false)
	if !ok {
		return
	}
	if err := services.CanDeleteQuiz(quiz); err != nil {
		quizError(c, err, ErrFailedToDelete)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		attempts := tx.Model(&models.QuizAttempt{}).Select("id").Where("quiz_id = ?", quiz.ID)
		if err := tx.Where("attempt_id IN (?)", attempts).Delete(&models.QuizAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizAttempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(quiz).Error
	})
	if err != nil {
		logger.Log.WithError(err).WithField("quiz_id", quiz.ID).Error("Failed to delete quiz")
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgQuizDeleted})
}

// AssignQuestions replaces the questions of a quiz in created status
// @Summary Assign questions to a quiz
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param questions body QuizQuestionsRequest true "Questions"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/quizzes/{id}/questions [put]
// @Security Bearer
func AssignQuestions(c *gin.Context) {
	quiz, ok := findQuiz(c, false)
	if !ok {
		return
	}
	var req QuizQuestionsRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	ids := make([]uint, 0, len(req.Questions))
	seen := make(map[uint]bool, len(req.Questions))
	items := make([]models.QuizQuestion, 0, len(req.Questions))
	for i, item := range req.Questions {
		if seen[item.QuestionID] {
			response.Error(c, http.StatusBadRequest, ErrDuplicateQuestion)
			return
		}
		seen[item.QuestionID] = true
		ids = append(ids, item.QuestionID)

		qq := models.QuizQuestion{QuestionID: item.QuestionID, Order: item.Order, Points: item.Points}
		if qq.Order == 0 {
			qq.Order = i + 1
		}
		if qq.Points == 0 {
			qq.Points = 1
		}
		items = append(items, qq)
	}

	if len(ids) > 0 {
		var found int64
		if err := database.DB.Model(&models.Question{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
			return
		}
		if int(found) != len(ids) {
			response.Error(c, http.StatusBadRequest, ErrUnknownQuestions)
			return
		}
	}

	if err := services.SetQuizQuestions(database.DB, quiz, items); err != nil {
		quizError(c, err, ErrFailedToSave)
		return
	}

	quiz, ok = reloadQuiz(c, quiz.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func reloadQuiz(c *gin.Context, id uint) (*models.Quiz, bool) {
	var quiz models.Quiz
	if err := database.DB.Preload("Questions", orderedQuestions).Preload("Questions.Question").First(&quiz, id).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return nil, false
	}
	return &quiz, true
}

// transition moves the quiz of the path to the given status; from restricts the current status when set
func transition(c *gin.Context, from, to string) {
	quiz, ok := findQuiz(c, false)
	if !ok {
		return
	}
	if from != "" && quiz.Status != from {
		response.Error(c, http.StatusBadRequest, fmt.Sprintf("%s: %s to %s", services.ErrQuizInvalidTransition, quiz.Status, to))
		return
	}
	previous := quiz.Status
	if err := services.TransitionQuiz(database.DB, quiz, to); err != nil {
		quizError(c, err, ErrFailedToSave)
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"quiz_id": quiz.ID,
		"from":    previous,
		"to":      to,
	}).Info("Quiz status changed")
	c.JSON(http.StatusOK, quiz)
}

// PublishQuiz opens a created quiz to contestants
// @Summary Publish a quiz
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} map[string]string
// @Router /organizer/quizzes/{id}/publish [post]
// @Security Bearer
func PublishQuiz(c *gin.Context) {
	transition(c, models.QuizCreated, models.QuizPublished)
}

// RetractQuiz withdraws a published quiz
// @Summary Retract a quiz
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} map[string]string
// @Router /organizer/quizzes/{id}/retract [post]
// @Security Bearer
func RetractQuiz(c *gin.Context) {
	transition(c, "", models.QuizRetracted)
}

// RepublishQuiz publishes a retracted quiz again
// @Summary Republish a quiz
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} map[string]string
// @Router /organizer/quizzes/{id}/republish [post]
// @Security Bearer
func RepublishQuiz(c *gin.Context) {
	transition(c, models.QuizRetracted, models.QuizPublished)
}

// EndQuiz closes a published quiz
// @Summary End a quiz
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} map[string]string
// @Router /organizer/quizzes/{id}/end [post]
// @Security Bearer
func EndQuiz(c *gin.Context) {
	transition(c, "", models.QuizEnded)
}

// GetQuizResults ranks the completed attempts of a quiz
// @Summary Quiz results
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {array} services.QuizResultRow
// @Failure 404 {object} map[string]string
// @Router /organizer/quizzes/{id}/results [get]
// @Security Bearer
func GetQuizResults(c *gin.Context) {
	quiz, ok := findQuiz(c, false)
	if !ok {
		return
	}
	rows, err := services.QuizResults(database.DB, quiz)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DownloadQuizResults exports the quiz results as a workbook
// @Summary Download quiz results
// @Tags Quizzes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Quiz ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /organizer/quizzes/{id}/results.xlsx [get]
// @Security Bearer
func DownloadQuizResults(c *gin.Context) {
	quiz, ok := findQuiz(c, false)
	if !ok {
		return
	}
	rows, err := services.QuizResults(database.DB, quiz)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	data, err := services.QuizResultsWorkbook(rows)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	utils.SendXLSX(c, fmt.Sprintf("quiz-%d-results.xlsx", quiz.ID), data)
}

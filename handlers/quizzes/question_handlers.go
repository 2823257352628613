package quizzes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func findQuestion(c *gin.Context) (*models.Question, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var question models.Question
	if err := database.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrQuestionNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &question, true
}

// checkAnswers validates the options and correct answers of a question; empty when valid
func checkAnswers(req *QuestionRequest) string {
	options := make(map[string]bool, len(req.AnswerOptions))
	for _, o := range req.AnswerOptions {
		key := strings.TrimSpace(o.Option)
		if key == "" || options[key] {
			return ErrDuplicateOption
		}
		options[key] = true
	}
	if req.AnswerType == models.AnswerBinary && len(req.AnswerOptions) != 2 {
		return ErrBinaryOptions
	}
	if req.AnswerType != models.AnswerMultiple && len(req.AnswerCorrect) != 1 {
		return ErrSingleAnswerOnly
	}
	seen := make(map[string]bool, len(req.AnswerCorrect))
	for _, a := range req.AnswerCorrect {
		key := strings.TrimSpace(a)
		if !options[key] || seen[key] {
			return ErrInvalidCorrectAnswer
		}
		seen[key] = true
	}
	return ""
}

// apply copies a validated request onto the question
func (req *QuestionRequest) apply(question *models.Question) error {
	options, err := json.Marshal(req.AnswerOptions)
	if err != nil {
		return err
	}
	correct := make([]string, len(req.AnswerCorrect))
	for i, a := range req.AnswerCorrect {
		correct[i] = strings.TrimSpace(a)
	}

	question.TargetGroup = req.TargetGroup
	question.KnowledgeField = req.KnowledgeField
	question.Question = req.Question
	question.QuestionImage = req.QuestionImage
	question.AnswerType = req.AnswerType
	question.AnswerOptions = datatypes.JSON(options)
	question.AnswerCorrect = strings.Join(correct, ",")
	return nil
}

// GetQuestions lists the question bank
// @Summary List questions
// @Tags Quizzes
// @Produce json
// @Param targetGroup query string false "Target group"
// @Param knowledgeField query string false "Knowledge field"
// @Param answerType query string false "Answer type"
// @Param search query string false "Question text"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /organizer/questions [get]
// @Security Bearer
func GetQuestions(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.Question{})
	if group := c.Query("targetGroup"); group != "" {
		query = query.Where("target_group = ?", group)
	}
	if field := c.Query("knowledgeField"); field != "" {
		query = query.Where("knowledge_field = ?", field)
	}
	if answerType := c.Query("answerType"); answerType != "" {
		query = query.Where("answer_type = ?", answerType)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		query = query.Where("LOWER(question) LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	questions := []models.Question{}
	if err := query.Scopes(pagination.Scope).Order("id DESC").Find(&questions).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	response.Paginated(c, questions, pagination.WithTotal(total))
}

// GetQuestion returns one question
// @Summary Get a question
// @Tags Quizzes
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} map[string]string
// @Router /organizer/questions/{id} [get]
// @Security Bearer
func GetQuestion(c *gin.Context) {
	question, ok := findQuestion(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion adds a question to the bank
// @Summary Create a question
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param question body QuestionRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} map[string]string
// @Router /organizer/questions [post]
// @Security Bearer
func CreateQuestion(c *gin.Context) {
	var req QuestionRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if msg := checkAnswers(&req); msg != "" {
		response.Error(c, http.StatusBadRequest, msg)
		return
	}

	question := models.Question{}
	if err := req.apply(&question); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if user, err := middleware.GetUserFromRequest(c); err == nil {
		question.CreatedBy = user.ID
	}
	if err := database.DB.Create(&question).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSaveQuestion)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion replaces a question
// @Summary Update a question
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param question body QuestionRequest true "Question"
// @Success 200 {object} models.Question
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/questions/{id} [put]
// @Security Bearer
func UpdateQuestion(c *gin.Context) {
	question, ok := findQuestion(c)
	if !ok {
		return
	}
	var req QuestionRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if msg := checkAnswers(&req); msg != "" {
		response.Error(c, http.StatusBadRequest, msg)
		return
	}
	if err := req.apply(question); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := database.DB.Save(question).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSaveQuestion)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question that no quiz uses
// @Summary Delete a question
// @Tags Quizzes
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/questions/{id} [delete]
// @Security Bearer
func DeleteQuestion(c *gin.Context) {
	question, ok := findQuestion(c)
	if !ok {
		return
	}
	var used int64
	if err := database.DB.Model(&models.QuizQuestion{}).Where("question_id = ?", question.ID).Count(&used).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	if used > 0 {
		response.Error(c, http.StatusConflict, ErrQuestionInUse)
		return
	}
	if err := database.DB.Delete(question).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSaveQuestion)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgQuestionDeleted})
}

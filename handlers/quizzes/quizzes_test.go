package quizzes

import (
	"fmt"
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/services"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quizSetup struct {
	router     *gin.Engine
	operator   string
	contestant models.Contestant
}

func setup(t *testing.T) *quizSetup {
	s := &quizSetup{router: testutil.NewRouter(t, RegisterRoutes)}
	_, s.operator = testutil.CreateUser(t, "operator@example.com", models.RoleOperator)
	contingent := testutil.CreateContingent(t, database.DB, "SK Bukit Indah")
	s.contestant = testutil.CreateContestant(t, database.DB, contingent.ID)
	return s
}

func abOptions() []models.AnswerOption {
	return []models.AnswerOption{{Option: "A", Answer: "3"}, {Option: "B", Answer: "4"}, {Option: "C", Answer: "5"}}
}

func (s *quizSetup) createQuestion(t *testing.T, req QuestionRequest) models.Question {
	t.Helper()
	w := testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/questions", req, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var question models.Question
	testutil.Decode(t, w, &question)
	return question
}

// createPublishedQuiz builds a quiz with a single selection question worth 2 and a multiple selection question worth 3
func (s *quizSetup) createPublishedQuiz(t *testing.T) (models.Quiz, []models.Question) {
	t.Helper()
	questions := []models.Question{
		s.createQuestion(t, QuestionRequest{TargetGroup: "PRIMARY", Question: "2 + 2?", AnswerType: models.AnswerSingle, AnswerOptions: abOptions(), AnswerCorrect: []string{"B"}}),
		s.createQuestion(t, QuestionRequest{TargetGroup: "PRIMARY", Question: "Pick the primes", AnswerType: models.AnswerMultiple, AnswerOptions: abOptions(), AnswerCorrect: []string{"A", "C"}}),
	}

	w := testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/quizzes", QuizRequest{Title: "Sains", TargetGroup: "PRIMARY"}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz models.Quiz
	testutil.Decode(t, w, &quiz)
	assert.Equal(t, models.QuizCreated, quiz.Status)
	assert.Equal(t, 30, quiz.Duration)

	w = testutil.DoJSON(s.router, http.MethodPut, fmt.Sprintf("/api/v1/organizer/quizzes/%d/questions", quiz.ID), QuizQuestionsRequest{Questions: []QuizQuestionItem{
		{QuestionID: questions[0].ID, Points: 2},
		{QuestionID: questions[1].ID, Points: 3},
	}}, s.operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &quiz)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, 5, quiz.TotalMarks)
	assert.Equal(t, 1, quiz.Questions[0].Order)

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("/api/v1/organizer/quizzes/%d/publish", quiz.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &quiz)
	require.Equal(t, models.QuizPublished, quiz.Status)
	return quiz, questions
}

func TestQuestionValidation(t *testing.T) {
	s := setup(t)

	invalid := []QuestionRequest{
		{TargetGroup: "PRIMARY", Question: "Round?", AnswerType: models.AnswerBinary, AnswerOptions: abOptions(), AnswerCorrect: []string{"A"}},
		{TargetGroup: "PRIMARY", Question: "2 + 2?", AnswerType: models.AnswerSingle, AnswerOptions: abOptions(), AnswerCorrect: []string{"A", "B"}},
		{TargetGroup: "PRIMARY", Question: "2 + 2?", AnswerType: models.AnswerSingle, AnswerOptions: abOptions(), AnswerCorrect: []string{"D"}},
		{TargetGroup: "PRIMARY", Question: "2 + 2?", AnswerType: models.AnswerSingle, AnswerOptions: []models.AnswerOption{{Option: "A"}, {Option: "A"}}, AnswerCorrect: []string{"A"}},
		{TargetGroup: "PRIMARY", Question: "2 + 2?", AnswerType: "essay", AnswerOptions: abOptions(), AnswerCorrect: []string{"A"}},
	}
	for i, req := range invalid {
		w := testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/questions", req, s.operator)
		assert.Equal(t, http.StatusBadRequest, w.Code, "request %d", i)
	}

	question := s.createQuestion(t, QuestionRequest{
		TargetGroup:   "PRIMARY",
		Question:      "The earth is round",
		AnswerType:    models.AnswerBinary,
		AnswerOptions: []models.AnswerOption{{Option: "TRUE", Answer: "Betul"}, {Option: "FALSE", Answer: "Salah"}},
		AnswerCorrect: []string{"TRUE"},
	})
	assert.Equal(t, "TRUE", question.AnswerCorrect)

	w := testutil.DoJSON(s.router, http.MethodGet, "/api/v1/organizer/questions?answerType=binary", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.Question `json:"data"`
	}
	testutil.Decode(t, w, &page)
	assert.Len(t, page.Data, 1)

	w = testutil.DoJSON(s.router, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/questions/%d", question.ID), nil, s.operator)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuizLifecycle(t *testing.T) {
	s := setup(t)

	w := testutil.DoJSON(s.router, http.MethodPost, "/api/v1/organizer/quizzes", QuizRequest{Title: "Empty", TargetGroup: "PRIMARY"}, s.operator)
	require.Equal(t, http.StatusCreated, w.Code)
	var empty models.Quiz
	testutil.Decode(t, w, &empty)
	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("/api/v1/organizer/quizzes/%d/publish", empty.ID), nil, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	quiz, questions := s.createPublishedQuiz(t)
	base := fmt.Sprintf("/api/v1/organizer/quizzes/%d", quiz.ID)

	w = testutil.DoJSON(s.router, http.MethodPut, base, QuizRequest{Title: "Renamed", TargetGroup: "PRIMARY"}, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = testutil.DoJSON(s.router, http.MethodPut, base+"/questions", QuizQuestionsRequest{}, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = testutil.DoJSON(s.router, http.MethodDelete, base, nil, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = testutil.DoJSON(s.router, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/questions/%d", questions[0].ID), nil, s.operator)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPost, base+"/republish", nil, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(s.router, http.MethodPost, base+"/retract", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoJSON(s.router, http.MethodPost, base+"/publish", nil, s.operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(s.router, http.MethodPost, base+"/republish", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(s.router, http.MethodPost, base+"/retract", nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoJSON(s.router, http.MethodDelete, base, nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var remaining int64
	database.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestArenaFlow(t *testing.T) {
	s := setup(t)
	quiz, questions := s.createPublishedQuiz(t)
	arena := "/api/v1/arena/contestants/" + s.contestant.Hashcode + "/quizzes"

	w := testutil.DoJSON(s.router, http.MethodGet, arena, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var listed []ArenaQuiz
	testutil.Decode(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, 2, listed[0].TotalQuestions)
	assert.Empty(t, listed[0].AttemptStatus)

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("%s/%d/start", arena, quiz.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "answer_correct")
	var started StartResponse
	testutil.Decode(t, w, &started)
	require.Len(t, started.Questions, 2)
	assert.Len(t, started.Questions[0].AnswerOptions, 3)

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("%s/%d/start", arena, quiz.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resumed StartResponse
	testutil.Decode(t, w, &resumed)
	assert.Equal(t, started.Attempt.ID, resumed.Attempt.ID)

	submit := SubmitRequest{
		AttemptID: started.Attempt.ID,
		TimeUsed:  120,
		Answers: []services.SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOptions: []string{"B"}},
			{QuestionID: questions[1].ID, SelectedOptions: []string{"A"}},
		},
	}
	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("%s/%d/submit", arena, quiz.ID), submit, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.QuizResult
	testutil.Decode(t, w, &result)
	assert.Equal(t, 2, result.TotalScore)
	assert.Equal(t, 5, result.MaxScore)
	assert.Equal(t, 40, result.PercentageScore)
	assert.Equal(t, 1, result.CorrectAnswers)

	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("%s/%d/submit", arena, quiz.ID), submit, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(s.router, http.MethodPost, fmt.Sprintf("%s/%d/start", arena, quiz.ID), nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = testutil.DoJSON(s.router, http.MethodGet, "/api/v1/arena/contestants/UNKNOWN/quizzes", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(s.router, http.MethodGet, arena, nil, "")
	testutil.Decode(t, w, &listed)
	assert.Equal(t, models.AttemptCompleted, listed[0].AttemptStatus)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/quizzes/%d/results", quiz.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []services.QuizResultRow
	testutil.Decode(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, s.contestant.Name, rows[0].ContestantName)
	assert.Equal(t, "SK Bukit Indah", rows[0].ContingentName)
	assert.Equal(t, 40, rows[0].Percentage)

	w = testutil.DoJSON(s.router, http.MethodGet, fmt.Sprintf("/api/v1/organizer/quizzes/%d/results.xlsx", quiz.ID), nil, s.operator)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "results.xlsx")
}

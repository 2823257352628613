package quizzes

import (
	"time"

	"techlympics/models"
	"techlympics/services"
)

// Constants for error messages
const (
	ErrQuizNotFound         = "Quiz not found"
	ErrQuestionNotFound     = "Question not found"
	ErrContestantNotFound   = "Contestant not found or inactive"
	ErrFailedToGet          = "Failed to get quizzes"
	ErrFailedToSave         = "Failed to save quiz"
	ErrFailedToSaveQuestion = "Failed to save question"
	ErrFailedToDelete       = "Failed to delete quiz"
	ErrFailedToStart        = "Failed to start quiz"
	ErrFailedToSubmit       = "Failed to submit quiz"
	ErrQuestionInUse        = "Question is assigned to a quiz"
	ErrUnknownQuestions     = "Some questions do not exist"
	ErrDuplicateQuestion    = "A question can only be assigned once"
	ErrInvalidCorrectAnswer = "The correct answer must name existing options"
	ErrSingleAnswerOnly     = "Single selection and binary questions have exactly one correct option"
	ErrBinaryOptions        = "Binary questions have exactly two options"
	ErrDuplicateOption      = "Answer options must be unique"
	MsgQuizDeleted          = "Quiz deleted"
	MsgQuestionDeleted      = "Question deleted"
)

// QuestionRequest creates or replaces a question of the bank
type QuestionRequest struct {
	TargetGroup    string                `json:"targetGroup" binding:"required"`
	KnowledgeField string                `json:"knowledgeField"`
	Question       string                `json:"question" binding:"required"`
	QuestionImage  string                `json:"questionImage"`
	AnswerType     string                `json:"answerType" binding:"required,oneof=single_selection multiple_selection binary"`
	AnswerOptions  []models.AnswerOption `json:"answerOptions" binding:"required,min=2,dive"`
	AnswerCorrect  []string              `json:"answerCorrect" binding:"required,min=1"`
}

// QuizRequest creates or updates a quiz
type QuizRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TargetGroup string `json:"targetGroup" binding:"required"`
	Duration    int    `json:"duration" binding:"omitempty,min=1,max=600"`
}

// QuizQuestionItem places one question in a quiz
type QuizQuestionItem struct {
	QuestionID uint `json:"questionId" binding:"required"`
	Order      int  `json:"order"`
	Points     int  `json:"points" binding:"omitempty,min=1"`
}

type QuizQuestionsRequest struct {
	Questions []QuizQuestionItem `json:"questions" binding:"dive"`
}

// SubmitRequest carries the answers of a started attempt
type SubmitRequest struct {
	AttemptID uint                       `json:"attemptId" binding:"required"`
	Answers   []services.SubmittedAnswer `json:"answers" binding:"dive"`
	TimeUsed  int                        `json:"timeUsed" binding:"omitempty,min=0"`
}

// ArenaQuiz is a published quiz as a contestant sees it
type ArenaQuiz struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TargetGroup    string     `json:"targetGroup"`
	Duration       int        `json:"duration"`
	TotalMarks     int        `json:"totalMarks"`
	TotalQuestions int        `json:"totalQuestions"`
	PublishedAt    *time.Time `json:"publishedAt"`
	AttemptStatus  string     `json:"attemptStatus,omitempty"`
	Score          *int       `json:"score,omitempty"`
}

// ArenaQuestion hides the correct answer of a question
type ArenaQuestion struct {
	ID            uint                  `json:"id"`
	Order         int                   `json:"order"`
	Points        int                   `json:"points"`
	Question      string                `json:"question"`
	QuestionImage string                `json:"questionImage"`
	AnswerType    string                `json:"answerType"`
	AnswerOptions []models.AnswerOption `json:"answerOptions"`
}

// StartResponse is an open attempt with the questions to answer
type StartResponse struct {
	Attempt   models.QuizAttempt `json:"attempt"`
	Quiz      ArenaQuiz          `json:"quiz"`
	Questions []ArenaQuestion    `json:"questions"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	QuizCreated   = "created"
	QuizPublished = "published"
	QuizRetracted = "retracted"
	QuizEnded     = "ended"

	AnswerSingle   = "single_selection"
	AnswerMultiple = "multiple_selection"
	AnswerBinary   = "binary"

	AttemptStarted   = "started"
	AttemptCompleted = "completed"
)

type Quiz struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	TargetGroup string         `gorm:"type:varchar(30);not null" json:"target_group"`
	Duration    int            `gorm:"not null;default:30" json:"duration"`
	TotalMarks  int            `gorm:"not null;default:0" json:"total_marks"`
	Status      string         `gorm:"type:varchar(20);not null;default:created;index" json:"status"`
	PublishedAt *time.Time     `json:"published_at"`
	CreatedBy   uint           `json:"created_by"`
	Questions   []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AnswerOption is one selectable answer of a question
type AnswerOption struct {
	Option string `json:"option"`
	Answer string `json:"answer"`
}

type Question struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TargetGroup    string         `gorm:"type:varchar(30);not null" json:"target_group"`
	KnowledgeField string         `gorm:"type:varchar(100)" json:"knowledge_field"`
	Question       string         `gorm:"type:text;not null" json:"question"`
	QuestionImage  string         `gorm:"type:varchar(500)" json:"question_image"`
	AnswerType     string         `gorm:"type:varchar(30);not null" json:"answer_type"`
	AnswerOptions  datatypes.JSON `json:"answer_options"`
	AnswerCorrect  string         `gorm:"type:varchar(100);not null" json:"answer_correct"`
	CreatedBy      uint           `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type QuizQuestion struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuizID     uint      `gorm:"not null;uniqueIndex:idx_quiz_question" json:"quiz_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_quiz_question" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Order      int       `gorm:"column:order_index;not null;default:0" json:"order"`
	Points     int       `gorm:"not null;default:1" json:"points"`
}

type QuizAttempt struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	QuizID       uint         `gorm:"not null;index" json:"quiz_id"`
	Quiz         *Quiz        `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	ContestantID uint         `gorm:"not null;index" json:"contestant_id"`
	Contestant   *Contestant  `gorm:"foreignKey:ContestantID" json:"contestant,omitempty"`
	Status       string       `gorm:"type:varchar(20);not null;default:started" json:"status"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      *time.Time   `json:"end_time"`
	Score        *int         `json:"score"`
	TimeTaken    *int         `json:"time_taken"`
	Answers      []QuizAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type QuizAnswer struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AttemptID       uint           `gorm:"not null;index" json:"attempt_id"`
	QuestionID      uint           `gorm:"not null;index" json:"question_id"`
	SelectedOptions datatypes.JSON `json:"selected_options"`
	IsCorrect       bool           `gorm:"not null;default:false" json:"is_correct"`
	PointsEarned    int            `gorm:"not null;default:0" json:"points_earned"`
	CreatedAt       time.Time      `json:"created_at"`
}

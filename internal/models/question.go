package models

import (
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	Essay          QuestionType = "essay"
)

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	TestID *uint        `json:"test_id" gorm:"index"`
	Text   string       `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Type   QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`

	// For multiple choice this is the canonical text of the correct option.
	// For essay questions it is the expected-answer reference text.
	CorrectAnswer string `json:"correct_answer" gorm:"type:text"`
	Category      string `json:"category" gorm:"size:100;index" validate:"omitempty,max=100"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

// IsEssay reports whether the question requires manual review instead of
// automated scoring.
func (q *Question) IsEssay() bool {
	return q.Type == Essay
}

type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

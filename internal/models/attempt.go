package models

import (
	"time"
)

type AttemptMode string

const (
	ModeTest     AttemptMode = "test"
	ModePractice AttemptMode = "practice"
)

// Attempt is the persisted snapshot of a finished test session. Attempts are
// created exactly once by the scoring service and never updated afterwards.
type Attempt struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TestID uint `json:"test_id" gorm:"not null;index"`

	// Score counts correct multiple-choice responses; TotalQuestions is the
	// number of responses recorded for the attempt (essays included).
	Score          int         `json:"score" gorm:"not null"`
	TotalQuestions int         `json:"total_questions" gorm:"not null"`
	Percentage     float64     `json:"percentage" gorm:"not null"`
	TimeTaken      *int        `json:"time_taken"` // seconds
	Mode           AttemptMode `json:"mode" gorm:"not null;default:test;index" validate:"omitempty,test_mode"`

	CompletedAt time.Time `json:"completed_at" gorm:"autoCreateTime;index"`

	// Relations
	Responses []Response `json:"responses" gorm:"foreignKey:AttemptID"`

	// Populated via JOIN for history/analytics display, not stored.
	TestName string `json:"test_name" gorm:"->;-:migration"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// Response records a user's answer to one question within an attempt.
// IsCorrect is tri-state: nil exclusively for essay questions.
type Response struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`

	UserAnswer *string `json:"user_answer" gorm:"type:text"`
	IsCorrect  *bool   `json:"is_correct"`
	WasFlagged bool    `json:"was_flagged" gorm:"default:false"`
	TimeSpent  *int    `json:"time_spent"` // seconds
}

func (Response) TableName() string {
	return "responses"
}

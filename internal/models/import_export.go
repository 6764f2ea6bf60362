package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportJobStatus string

const (
	ImportProcessing ImportJobStatus = "processing"
	ImportCompleted  ImportJobStatus = "completed"
	ImportFailed     ImportJobStatus = "failed"
)

// ImportJob records the outcome of a file import. Skipped blocks are kept as
// structured notes so imperfect source documents can be inspected afterwards
// instead of failing the whole import.
type ImportJob struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	TestID   *uint           `json:"test_id" gorm:"index"`
	Filename string          `json:"filename" gorm:"not null;size:255"`
	Status   ImportJobStatus `json:"status" gorm:"not null;default:processing"`

	QuestionCount int            `json:"question_count"`
	SkippedCount  int            `json:"skipped_count"`
	Skipped       datatypes.JSON `json:"skipped" gorm:"type:jsonb"` // []ImportSkipNote

	CreatedAt time.Time `json:"created_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportSkipNote describes one question block the text parser could not
// recover into a usable question.
type ImportSkipNote struct {
	Block  int    `json:"block"`
	Reason string `json:"reason"`
}

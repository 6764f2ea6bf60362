package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/studydesk/study-service/internal/models"
)

// EventType represents different types of study events
type EventType string

const (
	// Attempt events
	EventAttemptCompleted      EventType = "attempt.completed"
	EventMixedAttemptCompleted EventType = "attempt.mixed_completed"

	// Import events
	EventTestImported EventType = "test.imported"
)

// StudyEvent is the base event structure published to the broker
type StudyEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

const (
	eventSource  = "study-service"
	eventVersion = "1.0"
)

// NewStudyEvent creates an event envelope with a fresh id and timestamp
func NewStudyEvent(eventType EventType, data interface{}) *StudyEvent {
	return &StudyEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// Event payloads

type AttemptCompletedEvent struct {
	AttemptID   uint               `json:"attempt_id"`
	TestID      uint               `json:"test_id"`
	Score       int                `json:"score"`
	Total       int                `json:"total"`
	Percentage  float64            `json:"percentage"`
	Mode        models.AttemptMode `json:"mode"`
	TimeTaken   int                `json:"time_taken"` // seconds
	CompletedAt time.Time          `json:"completed_at"`
}

type MixedAttemptCompletedEvent struct {
	AttemptIDs    []uint             `json:"attempt_ids"`
	SourceTestIDs []uint             `json:"source_test_ids"`
	Mode          models.AttemptMode `json:"mode"`
	Orphaned      int                `json:"orphaned"` // responses dropped for lack of a source test
	CompletedAt   time.Time          `json:"completed_at"`
}

type TestImportedEvent struct {
	TestID        uint   `json:"test_id"`
	TestName      string `json:"test_name"`
	Filename      string `json:"filename"`
	QuestionCount int    `json:"question_count"`
	SkippedBlocks int    `json:"skipped_blocks"`
}

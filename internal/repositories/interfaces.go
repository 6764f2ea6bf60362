package repositories

import (
	"context"
	"time"

	"github.com/studydesk/study-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	GroupName *string `json:"group_name"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "created_at", "name", "group_name"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	TestID   *uint               `json:"test_id"`
	Mode     *models.AttemptMode `json:"mode"`
	DateFrom *time.Time          `json:"date_from"`
	DateTo   *time.Time          `json:"date_to"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

// ===== TYPED ANALYTICS ROWS =====
//
// Analytics queries return explicit record types rather than generic maps so
// callers never depend on column-name strings.

type ScorePoint struct {
	AttemptID   uint      `json:"attempt_id"`
	Percentage  float64   `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
	TestName    string    `json:"test_name"`
}

type TestAverage struct {
	TestID       uint    `json:"test_id"`
	TestName     string  `json:"test_name"`
	AvgScore     float64 `json:"avg_score"`
	BestScore    float64 `json:"best_score"`
	AttemptCount int     `json:"attempt_count"`
}

type AttemptFrequency struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type CategoryPerformance struct {
	Category   string  `json:"category"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

type MissedQuestion struct {
	QuestionID     uint    `json:"question_id"`
	TestID         uint    `json:"test_id"`
	TestName       string  `json:"test_name"`
	Text           string  `json:"text"`
	Category       string  `json:"category"`
	CorrectAnswer  string  `json:"correct_answer"`
	TimesAttempted int     `json:"times_attempted"`
	TimesMissed    int     `json:"times_missed"`
	MissRate       float64 `json:"miss_rate"`
}

type TestStatistics struct {
	AttemptCount int        `json:"attempt_count"`
	AvgScore     float64    `json:"avg_score"`
	BestScore    float64    `json:"best_score"`
	LastAttempt  *time.Time `json:"last_attempt"`
}

// ===== REPOSITORY INTERFACES =====

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error)
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id uint) error
	GetQuestionCount(ctx context.Context, id uint) (int, error)
	GetStatistics(ctx context.Context, id uint) (*TestStatistics, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByTest(ctx context.Context, testID uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	ReplaceOptions(ctx context.Context, questionID uint, options []models.QuestionOption) error
	Delete(ctx context.Context, id uint) error
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	CreateResponse(ctx context.Context, response *models.Response) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByIDWithResponses(ctx context.Context, id uint) (*models.Attempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetByTest(ctx context.Context, testID uint, filters AttemptFilters) ([]*models.Attempt, error)
}

type AnalyticsRepository interface {
	GetScoresOverTime(ctx context.Context, testID *uint, mode models.AttemptMode) ([]ScorePoint, error)
	GetAverageScoresByTest(ctx context.Context, mode models.AttemptMode) ([]TestAverage, error)
	GetAttemptFrequency(ctx context.Context, days int) ([]AttemptFrequency, error)
	GetCategoryPerformance(ctx context.Context, testID *uint) ([]CategoryPerformance, error)
	GetMissedQuestions(ctx context.Context, testID *uint) ([]MissedQuestion, error)
}

type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id uint) (*models.ImportJob, error)
}

// Repository is the aggregate storage collaborator handed to services.
type Repository interface {
	Test() TestRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Analytics() AnalyticsRepository
	ImportJob() ImportJobRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

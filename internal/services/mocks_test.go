package services

import (
	"context"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// Shared repository mocks for the service tests.

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) Update(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) GetQuestionCount(ctx context.Context, id uint) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockTestRepository) GetStatistics(ctx context.Context, id uint) (*repositories.TestStatistics, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.TestStatistics), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByTest(ctx context.Context, testID uint) ([]*models.Question, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) ReplaceOptions(ctx context.Context, questionID uint, options []models.QuestionOption) error {
	args := m.Called(ctx, questionID, options)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAttemptRepository struct {
	mock.Mock

	nextAttemptID uint
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	if args.Error(0) == nil {
		m.nextAttemptID++
		attempt.ID = m.nextAttemptID
	}
	return args.Error(0)
}

func (m *MockAttemptRepository) CreateResponse(ctx context.Context, response *models.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByIDWithResponses(ctx context.Context, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	args := m.Called(ctx, testID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) GetScoresOverTime(ctx context.Context, testID *uint, mode models.AttemptMode) ([]repositories.ScorePoint, error) {
	args := m.Called(ctx, testID, mode)
	return args.Get(0).([]repositories.ScorePoint), args.Error(1)
}

func (m *MockAnalyticsRepository) GetAverageScoresByTest(ctx context.Context, mode models.AttemptMode) ([]repositories.TestAverage, error) {
	args := m.Called(ctx, mode)
	return args.Get(0).([]repositories.TestAverage), args.Error(1)
}

func (m *MockAnalyticsRepository) GetAttemptFrequency(ctx context.Context, days int) ([]repositories.AttemptFrequency, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]repositories.AttemptFrequency), args.Error(1)
}

func (m *MockAnalyticsRepository) GetCategoryPerformance(ctx context.Context, testID *uint) ([]repositories.CategoryPerformance, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).([]repositories.CategoryPerformance), args.Error(1)
}

func (m *MockAnalyticsRepository) GetMissedQuestions(ctx context.Context, testID *uint) ([]repositories.MissedQuestion, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).([]repositories.MissedQuestion), args.Error(1)
}

type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportJobRepository) GetByID(ctx context.Context, id uint) (*models.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

// MockRepository aggregates the sub-repository mocks. WithTransaction runs
// the callback against the same mock set, which is enough for service tests.
type MockRepository struct {
	TestRepo      MockTestRepository
	QuestionRepo  MockQuestionRepository
	AttemptRepo   MockAttemptRepository
	AnalyticsRepo MockAnalyticsRepository
	ImportJobRepo MockImportJobRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) Test() repositories.TestRepository           { return &m.TestRepo }
func (m *MockRepository) Question() repositories.QuestionRepository   { return &m.QuestionRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository     { return &m.AttemptRepo }
func (m *MockRepository) Analytics() repositories.AnalyticsRepository { return &m.AnalyticsRepo }
func (m *MockRepository) ImportJob() repositories.ImportJobRepository { return &m.ImportJobRepo }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

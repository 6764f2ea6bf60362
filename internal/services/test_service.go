package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"github.com/studydesk/study-service/internal/validator"
)

// TestService manages the test catalog.
type TestService interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetWithQuestions(ctx context.Context, id uint) (*models.Test, error)
	List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error)
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id uint) error
	GetStatistics(ctx context.Context, id uint) (*repositories.TestStatistics, error)
}

type testService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *testService) Create(ctx context.Context, test *models.Test) error {
	test.Name = strings.TrimSpace(test.Name)
	if test.Name == "" {
		return ErrTestNameRequired
	}
	if err := s.validator.Validate(test); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created", "test_id", test.ID, "name", test.Name)
	return nil
}

func (s *testService) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	count, err := s.repo.Test().GetQuestionCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	test.QuestionCount = count

	return test, nil
}

func (s *testService) GetWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	test.QuestionCount = len(test.Questions)
	return test, nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	tests, total, err := s.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}

	for _, test := range tests {
		count, err := s.repo.Test().GetQuestionCount(ctx, test.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count questions: %w", err)
		}
		test.QuestionCount = count
	}

	return tests, total, nil
}

func (s *testService) Update(ctx context.Context, test *models.Test) error {
	test.Name = strings.TrimSpace(test.Name)
	if test.Name == "" {
		return ErrTestNameRequired
	}
	if err := s.validator.Validate(test); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.repo.Test().GetByID(ctx, test.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}

	s.logger.Info("Test updated", "test_id", test.ID)
	return nil
}

// Delete removes a test and, through the repository, its questions, attempts
// and responses.
func (s *testService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Test().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}

	s.logger.Info("Test deleted", "test_id", id)
	return nil
}

func (s *testService) GetStatistics(ctx context.Context, id uint) (*repositories.TestStatistics, error) {
	if _, err := s.repo.Test().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	stats, err := s.repo.Test().GetStatistics(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test statistics: %w", err)
	}
	return stats, nil
}

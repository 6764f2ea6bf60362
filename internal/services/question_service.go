package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"github.com/studydesk/study-service/internal/validator"
)

// QuestionService manages questions within a test and hands question sets to
// sessions, optionally shuffled.
type QuestionService interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetForTest(ctx context.Context, testID uint, randomize bool) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
}

type questionService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	randomizer *RandomizerService
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, randomizer *RandomizerService) QuestionService {
	return &questionService{
		repo:       repo,
		logger:     logger,
		validator:  v,
		randomizer: randomizer,
	}
}

func (s *questionService) Create(ctx context.Context, question *models.Question) error {
	if err := s.validator.Validate(question); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if question.TestID != nil {
		if _, err := s.repo.Test().GetByID(ctx, *question.TestID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTestNotFound
			}
			return fmt.Errorf("failed to get test: %w", err)
		}
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "type", question.Type)
	return nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

// GetForTest loads a test's questions in stored order, or shuffled with
// shuffled options when randomize is set.
func (s *questionService) GetForTest(ctx context.Context, testID uint, randomize bool) ([]*models.Question, error) {
	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	questions, err := s.repo.Question().GetByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	if randomize {
		questions = s.randomizer.ShuffleAll(questions)
	}

	return questions, nil
}

// Update rewrites the question's fields and replaces its option set.
func (s *questionService) Update(ctx context.Context, question *models.Question) error {
	if err := s.validator.Validate(question); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.repo.Question().GetByID(ctx, question.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Update(ctx, question); err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
		if !question.IsEssay() {
			if err := txRepo.Question().ReplaceOptions(ctx, question.ID, question.Options); err != nil {
				return fmt.Errorf("failed to replace options: %w", err)
			}
		}
		return nil
	})
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

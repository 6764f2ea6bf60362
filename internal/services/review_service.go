package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
)

// ReviewService surfaces questions worth revisiting based on attempt history
// and loads them back as full questions for a review session.
type ReviewService interface {
	GetMissedQuestions(ctx context.Context, testID *uint) ([]repositories.MissedQuestion, error)
	GetFrequentlyMissed(ctx context.Context, testID *uint, minAttempts int, missThreshold float64) ([]repositories.MissedQuestion, error)
	LoadReviewQuestions(ctx context.Context, questionIDs []uint) ([]*models.Question, error)
}

type reviewService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReviewService(repo repositories.Repository, logger *slog.Logger) ReviewService {
	return &reviewService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reviewService) GetMissedQuestions(ctx context.Context, testID *uint) ([]repositories.MissedQuestion, error) {
	missed, err := s.repo.Analytics().GetMissedQuestions(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get missed questions: %w", err)
	}
	return missed, nil
}

// GetFrequentlyMissed filters missed questions down to those attempted at
// least minAttempts times with a miss rate at or above missThreshold
// (a fraction, 0..1).
func (s *reviewService) GetFrequentlyMissed(ctx context.Context, testID *uint, minAttempts int, missThreshold float64) ([]repositories.MissedQuestion, error) {
	if minAttempts < 1 {
		minAttempts = 1
	}

	missed, err := s.GetMissedQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}

	var frequent []repositories.MissedQuestion
	for _, question := range missed {
		if question.TimesAttempted >= minAttempts && question.MissRate >= missThreshold {
			frequent = append(frequent, question)
		}
	}

	s.logger.Debug("Selected frequently missed questions",
		"candidates", len(missed),
		"selected", len(frequent),
		"min_attempts", minAttempts,
		"miss_threshold", missThreshold)

	return frequent, nil
}

// LoadReviewQuestions resolves question IDs into full questions with their
// options. IDs that no longer exist are skipped rather than failing the
// whole review session.
func (s *reviewService) LoadReviewQuestions(ctx context.Context, questionIDs []uint) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(questionIDs))

	for _, id := range questionIDs {
		question, err := s.repo.Question().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				s.logger.Warn("Review question no longer exists", "question_id", id)
				continue
			}
			return nil, fmt.Errorf("failed to load question %d: %w", id, err)
		}
		questions = append(questions, question)
	}

	return questions, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
)

// MixService draws a random subset of questions across several source tests
// for a mixed session. Each selected question keeps its original test id so
// the scoring service can attribute results back per test.
type MixService interface {
	SelectQuestions(ctx context.Context, testIDs []uint, count int, randomize bool) ([]*models.Question, error)
}

type mixService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	randomizer *RandomizerService
}

func NewMixService(repo repositories.Repository, logger *slog.Logger, randomizer *RandomizerService) MixService {
	return &mixService{
		repo:       repo,
		logger:     logger,
		randomizer: randomizer,
	}
}

func (s *mixService) SelectQuestions(ctx context.Context, testIDs []uint, count int, randomize bool) ([]*models.Question, error) {
	if len(testIDs) == 0 || count <= 0 {
		return []*models.Question{}, nil
	}

	var all []*models.Question
	for _, testID := range testIDs {
		questions, err := s.repo.Question().GetByTest(ctx, testID)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions for test %d: %w", testID, err)
		}
		all = append(all, questions...)
	}

	if len(all) == 0 {
		return []*models.Question{}, nil
	}

	selected := s.sample(all, count)

	if randomize {
		selected = s.randomizer.ShuffleAll(selected)
	}

	s.logger.Info("Mixed question set selected",
		"source_tests", len(testIDs),
		"pool_size", len(all),
		"selected", len(selected))

	return selected, nil
}

// sample draws up to count questions without replacement, leaving the pool
// slice untouched.
func (s *mixService) sample(pool []*models.Question, count int) []*models.Question {
	if count > len(pool) {
		count = len(pool)
	}
	shuffled := s.randomizer.ShuffleQuestions(pool)
	return shuffled[:count]
}

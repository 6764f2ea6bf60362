package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/studydesk/study-service/internal/events"
	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
)

// ScoreResult is everything storage needs to persist an attempt with its
// responses, and everything a results screen needs to render, so neither
// collaborator recomputes scoring logic.
type ScoreResult struct {
	Score              int               `json:"score"`
	Total              int               `json:"total"` // MC-only denominator
	TotalQuestions     int               `json:"total_questions"`
	Percentage         float64           `json:"percentage"`
	CorrectQuestions   int               `json:"correct_questions"`
	IncorrectQuestions int               `json:"incorrect_questions"`
	EssayQuestions     int               `json:"essay_questions"`
	TimeTaken          int               `json:"time_taken"` // seconds
	Responses          []models.Response `json:"responses"`
}

type ScoringService interface {
	ScoreQuestion(question *models.Question, userAnswer *string) *bool
	ScoreTest(session *TestSession) *ScoreResult
	SaveAttempt(ctx context.Context, testID uint, result *ScoreResult, mode models.AttemptMode) (uint, error)
	SaveMixedAttempt(ctx context.Context, result *ScoreResult, questions []*models.Question, mode models.AttemptMode) ([]uint, error)
	GetAttemptDetails(ctx context.Context, attemptID uint) (*models.Attempt, error)
}

type scoringService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewScoringService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) ScoringService {
	return &scoringService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

// ScoreQuestion grades a single question. Essay questions are never
// auto-graded and return nil. Multiple choice is an exact, case-sensitive
// match after trimming surrounding whitespace; an absent or empty answer is
// simply wrong.
func (s *scoringService) ScoreQuestion(question *models.Question, userAnswer *string) *bool {
	if question.IsEssay() {
		return nil
	}
	result := userAnswer != nil && *userAnswer != "" &&
		strings.TrimSpace(*userAnswer) == strings.TrimSpace(question.CorrectAnswer)
	return &result
}

// ScoreTest scores every question in a finished session, answered or not,
// producing one response per question. Percentage uses the MC-only
// denominator and is 0.0 when the session has no MC questions.
func (s *scoringService) ScoreTest(session *TestSession) *ScoreResult {
	correct := 0
	incorrect := 0
	essays := 0
	responses := make([]models.Response, 0, len(session.Questions))

	for _, question := range session.Questions {
		var userAnswer *string
		if answer, ok := session.Response(question.ID); ok {
			userAnswer = &answer
		}

		isCorrect := s.ScoreQuestion(question, userAnswer)

		switch {
		case isCorrect == nil:
			essays++
		case *isCorrect:
			correct++
		default:
			incorrect++
		}

		var timeSpent *int
		if seconds, ok := session.QuestionTime(question.ID); ok {
			timeSpent = &seconds
		}

		responses = append(responses, models.Response{
			QuestionID: question.ID,
			UserAnswer: userAnswer,
			IsCorrect:  isCorrect,
			WasFlagged: session.IsFlagged(question.ID),
			TimeSpent:  timeSpent,
		})
	}

	mcTotal := correct + incorrect
	percentage := 0.0
	if mcTotal > 0 {
		percentage = roundToOneDecimal(float64(correct) / float64(mcTotal) * 100)
	}

	return &ScoreResult{
		Score:              correct,
		Total:              mcTotal,
		TotalQuestions:     len(session.Questions),
		Percentage:         percentage,
		CorrectQuestions:   correct,
		IncorrectQuestions: incorrect,
		EssayQuestions:     essays,
		TimeTaken:          session.ElapsedTime(),
		Responses:          responses,
	}
}

// SaveAttempt persists an attempt with its responses and publishes an
// attempt.completed event. The attempt is immutable once written.
func (s *scoringService) SaveAttempt(ctx context.Context, testID uint, result *ScoreResult, mode models.AttemptMode) (uint, error) {
	attemptID, err := s.persistAttempt(ctx, testID, result, mode)
	if err != nil {
		return 0, err
	}

	s.publishEvent(ctx, events.NewStudyEvent(events.EventAttemptCompleted, events.AttemptCompletedEvent{
		AttemptID:   attemptID,
		TestID:      testID,
		Score:       result.Score,
		Total:       result.Total,
		Percentage:  result.Percentage,
		Mode:        mode,
		TimeTaken:   result.TimeTaken,
		CompletedAt: time.Now(),
	}))

	s.logger.Info("Attempt saved",
		"attempt_id", attemptID,
		"test_id", testID,
		"score", result.Score,
		"percentage", result.Percentage,
		"mode", mode)

	return attemptID, nil
}

// SaveMixedAttempt decomposes a mixed-session result into one attempt per
// originating test. Each group gets independently computed aggregates and a
// floor-proportional share of the session time. Responses whose question
// cannot be traced to a source test are dropped from persistence, counted
// and logged rather than failing the whole save.
func (s *scoringService) SaveMixedAttempt(ctx context.Context, result *ScoreResult, questions []*models.Question, mode models.AttemptMode) ([]uint, error) {
	questionToTest := make(map[uint]uint, len(questions))
	for _, question := range questions {
		if question.TestID != nil {
			questionToTest[question.ID] = *question.TestID
		}
	}

	// Group responses by source test, keeping first-seen test order so the
	// returned attempt ids line up with it.
	grouped := make(map[uint][]models.Response)
	var testOrder []uint
	orphaned := 0

	for _, response := range result.Responses {
		sourceTestID, ok := questionToTest[response.QuestionID]
		if !ok {
			orphaned++
			continue
		}
		if _, seen := grouped[sourceTestID]; !seen {
			testOrder = append(testOrder, sourceTestID)
		}
		grouped[sourceTestID] = append(grouped[sourceTestID], response)
	}

	if orphaned > 0 {
		s.logger.Warn("Dropping responses with no resolvable source test",
			"orphaned", orphaned,
			"total_responses", len(result.Responses))
	}

	totalResponses := len(result.Responses)

	attemptIDs := make([]uint, 0, len(testOrder))
	for _, testID := range testOrder {
		responses := grouped[testID]

		correct := 0
		incorrect := 0
		essays := 0
		for _, response := range responses {
			switch {
			case response.IsCorrect == nil:
				essays++
			case *response.IsCorrect:
				correct++
			default:
				incorrect++
			}
		}

		mcTotal := correct + incorrect
		percentage := 0.0
		if mcTotal > 0 {
			percentage = roundToOneDecimal(float64(correct) / float64(mcTotal) * 100)
		}

		proportionalTime := 0
		if totalResponses > 0 {
			proportionalTime = int(float64(result.TimeTaken) * float64(len(responses)) / float64(totalResponses))
		}

		perTestResult := &ScoreResult{
			Score:              correct,
			Total:              mcTotal,
			TotalQuestions:     len(responses),
			Percentage:         percentage,
			CorrectQuestions:   correct,
			IncorrectQuestions: incorrect,
			EssayQuestions:     essays,
			TimeTaken:          proportionalTime,
			Responses:          responses,
		}

		attemptID, err := s.persistAttempt(ctx, testID, perTestResult, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to save attempt for test %d: %w", testID, err)
		}
		attemptIDs = append(attemptIDs, attemptID)
	}

	s.publishEvent(ctx, events.NewStudyEvent(events.EventMixedAttemptCompleted, events.MixedAttemptCompletedEvent{
		AttemptIDs:    attemptIDs,
		SourceTestIDs: testOrder,
		Mode:          mode,
		Orphaned:      orphaned,
		CompletedAt:   time.Now(),
	}))

	s.logger.Info("Mixed attempt saved",
		"attempts", len(attemptIDs),
		"source_tests", len(testOrder),
		"orphaned", orphaned)

	return attemptIDs, nil
}

func (s *scoringService) GetAttemptDetails(ctx context.Context, attemptID uint) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithResponses(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// persistAttempt writes the attempt and its responses in one transaction.
func (s *scoringService) persistAttempt(ctx context.Context, testID uint, result *ScoreResult, mode models.AttemptMode) (uint, error) {
	timeTaken := result.TimeTaken
	attempt := &models.Attempt{
		TestID:         testID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		TimeTaken:      &timeTaken,
		Mode:           mode,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Attempt().Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}

		for i := range result.Responses {
			response := result.Responses[i]
			response.ID = 0
			response.AttemptID = attempt.ID
			if err := txRepo.Attempt().CreateResponse(ctx, &response); err != nil {
				return fmt.Errorf("failed to create response for question %d: %w", response.QuestionID, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return attempt.ID, nil
}

func (s *scoringService) publishEvent(ctx context.Context, event *events.StudyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStudyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish study event", "event_type", event.Type, "error", err)
	}
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
